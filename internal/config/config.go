// Package config loads pipeline configuration from environment and file.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	API        APIConfig        `yaml:"api" mapstructure:"api"`
	Enrichment EnrichmentConfig `yaml:"enrichment" mapstructure:"enrichment"`
	Load       LoadConfig       `yaml:"load" mapstructure:"load"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the target Postgres database. Either DatabaseURL or
// the discrete host/user/password/database fields must be set.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	Database    string `yaml:"database" mapstructure:"database"`
	SSLMode     string `yaml:"sslmode" mapstructure:"sslmode"`
}

// DSN returns the connection string, preferring DatabaseURL over the
// discrete credential fields.
func (s StoreConfig) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   "/" + s.Database,
	}
	if s.User != "" {
		if s.Password != "" {
			u.User = url.UserPassword(s.User, s.Password)
		} else {
			u.User = url.User(s.User)
		}
	}
	if s.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", s.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// APIConfig configures the upstream IBGE localidades endpoint.
type APIConfig struct {
	URL             string `yaml:"url" mapstructure:"url"`
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent       string `yaml:"user_agent" mapstructure:"user_agent"`
	RawSnapshotPath string `yaml:"raw_snapshot_path" mapstructure:"raw_snapshot_path"`
}

// EnrichmentConfig configures the local state-to-region reference table.
type EnrichmentConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoadConfig configures the load step.
type LoadConfig struct {
	// Prune deletes municipalities no longer present upstream. Off by
	// default: a shrinking source batch leaves existing rows untouched.
	Prune bool `yaml:"prune" mapstructure:"prune"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IBGESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys get empty defaults so AutomaticEnv can bind
	// them during Unmarshal.
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.user", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.database", "")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.sslmode", "prefer")
	v.SetDefault("api.url", "https://servicodados.ibge.gov.br/api/v1/localidades/municipios")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.user_agent", "ibgesync/1.0")
	v.SetDefault("api.raw_snapshot_path", "municipios_raw.json")
	v.SetDefault("enrichment.path", "regioes.csv")
	v.SetDefault("load.prune", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete enough to run.
func (c *Config) Validate() error {
	var missing []string
	if c.Store.DatabaseURL == "" {
		if c.Store.Host == "" {
			missing = append(missing, "store.host")
		}
		if c.Store.User == "" {
			missing = append(missing, "store.user")
		}
		if c.Store.Database == "" {
			missing = append(missing, "store.database")
		}
	}
	if c.API.URL == "" {
		missing = append(missing, "api.url")
	}
	if c.Enrichment.Path == "" {
		missing = append(missing, "enrichment.path")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
