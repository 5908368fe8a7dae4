package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/opendata-br/ibgesync/internal/config"
	"github.com/opendata-br/ibgesync/internal/db"
	"github.com/opendata-br/ibgesync/internal/fetcher"
	"github.com/opendata-br/ibgesync/internal/ibge"
)

// Result holds the row counts of a completed run.
type Result struct {
	RunID      string
	Fetched    int
	Dropped    int
	Duplicates int
	Unmatched  int
	Loaded     int64
	Pruned     int64
}

// Pipeline runs fetch, clean, enrich, and load in strict sequence. Steps do
// not overlap: each consumes the full output of the previous one, and the
// first failure aborts the remainder.
type Pipeline struct {
	cfg     *config.Config
	pool    db.Pool
	fetcher fetcher.Fetcher
	runs    *RunLog
}

// New creates a Pipeline over the given pool and fetcher.
func New(cfg *config.Config, pool db.Pool, f fetcher.Fetcher) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		pool:    pool,
		fetcher: f,
		runs:    NewRunLog(pool),
	}
}

// Run executes one complete pipeline pass. On success the target table
// holds exactly one row per municipality with current values; on failure the
// table is untouched and the returned error identifies the failing stage.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline"))
	start := time.Now()

	runID, err := p.runs.Start(ctx)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	res := &Result{RunID: runID}
	log = log.With(zap.String("run_id", runID))

	fail := func(stageErr error) (*Result, error) {
		if logErr := p.runs.Fail(ctx, runID, stageErr.Error()); logErr != nil {
			log.Error("failed to record run failure", zap.Error(logErr))
		}
		return nil, stageErr
	}

	// Preflight: the enrichment table must be present and usable before any
	// network traffic.
	regions, err := ibge.LoadRegionTable(p.cfg.Enrichment.Path)
	if err != nil {
		return fail(&ConfigError{Err: err})
	}
	log.Info("enrichment table loaded",
		zap.String("path", p.cfg.Enrichment.Path),
		zap.Int("states", len(regions)),
	)

	raws, err := p.fetch(ctx, log)
	if err != nil {
		return fail(&FetchError{Err: err})
	}
	res.Fetched = len(raws)
	log.Info("fetched municipalities", zap.Int("count", res.Fetched))

	cleaned := ibge.Clean(raws)
	res.Dropped = cleaned.Dropped
	res.Duplicates = cleaned.Duplicates
	if cleaned.Dropped > 0 || cleaned.Duplicates > 0 {
		log.Warn("cleaning discarded rows",
			zap.Int("dropped", cleaned.Dropped),
			zap.Int("duplicates", cleaned.Duplicates),
		)
	}
	if len(cleaned.Records) == 0 {
		return fail(&EmptyDatasetError{Fetched: res.Fetched})
	}

	enriched := ibge.Enrich(cleaned.Records, regions)
	res.Unmatched = enriched.Unmatched
	if enriched.Unmatched > 0 {
		log.Warn("rows with no enrichment match kept with unknown region",
			zap.Int("unmatched", enriched.Unmatched),
		)
	}

	loaded, err := ibge.Load(ctx, p.pool, enriched.Records, p.cfg.Load.Prune)
	if err != nil {
		return fail(&LoadError{Err: err})
	}
	res.Loaded = loaded.Upserted
	res.Pruned = loaded.Pruned

	if err := p.runs.Complete(ctx, runID, res); err != nil {
		log.Error("failed to record run completion", zap.Error(err))
	}

	log.Info("pipeline complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("dropped", res.Dropped),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("unmatched", res.Unmatched),
		zap.Int64("loaded", res.Loaded),
		zap.Int64("pruned", res.Pruned),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// fetch downloads the municipality payload and decodes it. When a raw
// snapshot path is configured, the payload is written there first and
// decoded from disk, keeping an on-disk copy of exactly what the API served.
func (p *Pipeline) fetch(ctx context.Context, log *zap.Logger) ([]ibge.RawMunicipality, error) {
	var r io.ReadCloser

	if path := p.cfg.API.RawSnapshotPath; path != "" {
		n, err := p.fetcher.DownloadToFile(ctx, p.cfg.API.URL, path)
		if err != nil {
			return nil, err
		}
		log.Info("raw snapshot saved", zap.String("path", path), zap.Int64("bytes", n))

		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	} else {
		body, err := p.fetcher.Download(ctx, p.cfg.API.URL)
		if err != nil {
			return nil, err
		}
		r = body
	}
	defer r.Close() //nolint:errcheck

	return fetcher.CollectJSONArray[ibge.RawMunicipality](ctx, r)
}
