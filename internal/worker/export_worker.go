package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/ultra_import/internal/service"
	"github.com/GTDGit/ultra_import/internal/utils"
)

// Exporter runs one catalog export.
type Exporter interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

// ExportWorker periodically runs incremental catalog exports.
type ExportWorker struct {
	exporter Exporter
	interval time.Duration
}

// NewExportWorker constructs an ExportWorker.
func NewExportWorker(exporter Exporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		interval: interval,
	}
}

// Start begins the periodic export loop and listens for context cancellation.
func (w *ExportWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting export worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Export worker stopped")
			return
		}
	}
}

func (w *ExportWorker) run(ctx context.Context) {
	log.Info().Msg("Running scheduled Ultra catalog export...")

	res, err := w.exporter.Export(ctx, service.ExportRequest{})
	if errors.Is(err, utils.ErrExportInProgress) {
		log.Info().Msg("Export already in progress, skipping scheduled run")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Scheduled export failed")
		return
	}

	log.Info().Str("path", res.Path).Dur("duration", res.Duration).Msg("Scheduled export completed")
}
