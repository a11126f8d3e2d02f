// Package pipeline runs one full extract→transform→load cycle. The four
// stages form a strict chain: reference data, readiness gate, extraction,
// transform, load — each completes before the next starts, and there is no
// cancellation once transform or load has begun.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobwarehouse/etl-service/internal/extract"
	"jobwarehouse/etl-service/internal/model"
	"jobwarehouse/etl-service/internal/refdata"
	"jobwarehouse/etl-service/internal/transform"
)

// BatchLoader is the warehouse side of the pipeline.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch []model.EnrichedJobPosting) error
}

// Fetcher pulls the raw batch from a ready endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]model.RawJobPosting, error)
}

// Pipeline owns one run of the daily batch.
type Pipeline struct {
	refDataDir string
	gate       extract.Gate
	fetcher    Fetcher
	loader     BatchLoader
	lock       RunLock
	logger     *zap.Logger
}

func New(refDataDir string, gate extract.Gate, fetcher Fetcher, loader BatchLoader, lock RunLock, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		refDataDir: refDataDir,
		gate:       gate,
		fetcher:    fetcher,
		loader:     loader,
		lock:       lock,
		logger:     logger,
	}
}

// Run executes one cycle. If another run holds the lock, Run skips without
// error — skipping is the concurrency bound working, not a failure.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))

	acquired, err := p.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		log.Warn("another run in progress, skipping")
		return nil
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("run lock release failed", zap.Error(err))
		}
	}()

	catalogs, err := refdata.Load(p.refDataDir)
	if err != nil {
		log.Error("reference data load failed", zap.Error(err))
		return err
	}
	log.Info("reference data loaded",
		zap.Int("landscape_categories", len(catalogs.Landscape)),
		zap.Int("technologies", len(catalogs.Technologies)),
		zap.Int("postal_codes", len(catalogs.PostalByCity)))

	endpoint, err := p.gate.AwaitReady(ctx)
	if err != nil {
		log.Error("upstream never became ready", zap.Error(err))
		return err
	}

	raw, err := p.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return err
	}

	annotator := transform.NewAnnotator(catalogs)
	enriched := transform.TransformBatch(raw, annotator, catalogs.PostalByCity)
	log.Info("batch transformed", zap.Int("jobs", len(enriched)))

	if err := p.loader.LoadBatch(ctx, enriched); err != nil {
		log.Error("load failed, batch rolled back", zap.Error(err))
		return err
	}

	log.Info("run complete", zap.Int("jobs", len(enriched)))
	return nil
}
