// Package retention runs the periodic sweep that enforces inbound
// artifact retention and purges stale webhook dedup entries.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/storage"
)

// batchSize bounds how many expired records one sweep pass deletes, so
// a large backlog doesn't block the cron goroutine for too long.
const batchSize = 200

// Sweeper periodically deletes inbound artifacts past their retention
// window and purges old callback dedup rows.
type Sweeper struct {
	cron    *cron.Cron
	inbound *database.InboundRepository
	dedup   *database.DedupRepository
	store   storage.Provider
	cfg     *config.Config
}

func NewSweeper(inbound *database.InboundRepository, dedup *database.DedupRepository, store storage.Provider, cfg *config.Config) *Sweeper {
	return &Sweeper{
		cron:    cron.New(cron.WithSeconds()),
		inbound: inbound,
		dedup:   dedup,
		store:   store,
		cfg:     cfg,
	}
}

// Start schedules the sweep at the configured interval and runs one
// pass immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.cfg.Inbound.CleanupInterval)
	_, err := s.cron.AddFunc(spec, func() { s.runSweep(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	s.cron.Start()
	go s.runSweep(ctx)
	return nil
}

// Stop blocks until any in-flight scheduled sweep completes. The first
// pass that Start launches in its own goroutine is not waited for.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Sweeper) runSweep(ctx context.Context) {
	artifactsDeleted, err := s.sweepExpiredArtifacts(ctx)
	if err != nil {
		logger.LogRetentionSweep(ctx, artifactsDeleted, 0, err)
		return
	}

	cutoff := time.Now().Add(-s.cfg.Inbound.DedupPurgeWindow)
	dedupPurged, err := s.dedup.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		logger.LogRetentionSweep(ctx, artifactsDeleted, dedupPurged, err)
		return
	}

	logger.LogRetentionSweep(ctx, artifactsDeleted, dedupPurged, nil)
}

func (s *Sweeper) sweepExpiredArtifacts(ctx context.Context) (int, error) {
	expired, err := s.inbound.ListExpiredRetention(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list retention-expired records: %w", err)
	}

	deleted := 0
	for _, rec := range expired {
		if rec.PDFPath != "" {
			if err := s.store.Delete(ctx, rec.PDFPath); err != nil {
				logger.LogRetentionSweep(ctx, deleted, 0, fmt.Errorf("failed to delete artifact %s: %w", rec.PDFPath, err))
				continue
			}
		}
		if err := s.inbound.ClearArtifactPaths(ctx, rec.ID); err != nil {
			return deleted, fmt.Errorf("failed to clear artifact paths for %s: %w", rec.ID, err)
		}
		deleted++
	}

	return deleted, nil
}
