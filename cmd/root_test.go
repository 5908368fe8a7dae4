package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["migrate"])
	assert.True(t, names["status"])
}

func TestRunFlags(t *testing.T) {
	prune := runCmd.Flags().Lookup("prune")
	require.NotNil(t, prune)
	assert.Equal(t, "false", prune.DefValue)
}

func TestStatusFlags(t *testing.T) {
	limit := statusCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "20", limit.DefValue)
}
