package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/ultra_import/internal/catalog"
	"github.com/GTDGit/ultra_import/internal/metrics"
	"github.com/GTDGit/ultra_import/internal/models"
	"github.com/GTDGit/ultra_import/internal/parser"
)

// Sink persists the finished catalog document.
type Sink interface {
	Save(ctx context.Context, path string, data []byte) error
}

// Locker guards against concurrent exports. Lock returns
// utils.ErrExportInProgress when another export holds the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func(context.Context) error, err error)
}

// Committer acknowledges received data so the next incremental request only
// returns changes. *ultra.Session implements it.
type Committer interface {
	CommitReceivingData(ctx context.Context, service string) (bool, error)
}

// ExportRequest describes a single export run.
type ExportRequest struct {
	FullSync bool
	// OutputPath overrides the default output path when non-empty.
	OutputPath string
}

// ExportResult describes a finished export run.
type ExportResult struct {
	RunID     string        `json:"run_id"`
	Path      string        `json:"path"`
	FullSync  bool          `json:"full_sync"`
	Stats     catalog.Stats `json:"stats"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ExportOptions holds the ExportService settings.
type ExportOptions struct {
	DefaultOutputPath string
	// CommitAfterExport acknowledges every dataset after a successful
	// incremental export.
	CommitAfterExport bool
}

// ExportService fetches the five Ultra datasets, fuses them into a catalog
// and hands the document to the sink.
type ExportService struct {
	fetcher   *FetchCoordinator
	builder   *catalog.Builder
	sink      Sink
	locker    Locker
	committer Committer
	opts      ExportOptions
}

// NewExportService constructs an ExportService. locker and committer may be nil.
func NewExportService(fetcher *FetchCoordinator, builder *catalog.Builder, sink Sink, locker Locker, committer Committer, opts ExportOptions) *ExportService {
	return &ExportService{
		fetcher:   fetcher,
		builder:   builder,
		sink:      sink,
		locker:    locker,
		committer: committer,
		opts:      opts,
	}
}

// Export runs one export. Any failure aborts the run before the sink is called.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	res := &ExportResult{
		RunID:     uuid.NewString(),
		Path:      req.OutputPath,
		FullSync:  req.FullSync,
		StartedAt: time.Now(),
	}
	if res.Path == "" {
		res.Path = s.opts.DefaultOutputPath
	}
	logger := log.With().Str("run_id", res.RunID).Logger()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			metrics.RecordExport(metrics.ResultError, time.Since(res.StartedAt))
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("Failed to release export lock")
			}
		}()
	}

	logger.Info().Bool("full_sync", req.FullSync).Str("path", res.Path).Msg("Starting Ultra catalog export")

	stats, err := s.run(ctx, req.FullSync, res.Path)
	res.Duration = time.Since(res.StartedAt)
	if err != nil {
		metrics.RecordExport(metrics.ResultError, res.Duration)
		logger.Error().Err(err).Dur("duration", res.Duration).Msg("Ultra catalog export failed")
		return nil, err
	}
	res.Stats = stats
	metrics.RecordExport(metrics.ResultSuccess, res.Duration)

	if s.opts.CommitAfterExport && !req.FullSync && s.committer != nil {
		s.commit(ctx)
	}

	logger.Info().
		Str("path", res.Path).
		Int("offers", stats.Offers).
		Int("offers_without_price", stats.OffersWithoutPrice).
		Dur("duration", res.Duration).
		Msg("Ultra catalog exported")
	return res, nil
}

func (s *ExportService) run(ctx context.Context, fullSync bool, path string) (catalog.Stats, error) {
	payloads := make(map[models.DatasetKind]string, len(models.ExportOrder))
	for _, kind := range models.ExportOrder {
		payload, err := s.fetcher.Fetch(ctx, kind, fullSync)
		if err != nil {
			return catalog.Stats{}, err
		}
		payloads[kind] = payload
	}

	in, err := parseAll(payloads)
	if err != nil {
		return catalog.Stats{}, err
	}

	doc, stats := s.builder.Build(in)
	data, err := catalog.Marshal(doc)
	if err != nil {
		return catalog.Stats{}, err
	}

	if err := s.sink.Save(ctx, path, data); err != nil {
		return catalog.Stats{}, err
	}
	return stats, nil
}

func parseAll(payloads map[models.DatasetKind]string) (catalog.Input, error) {
	var (
		in  catalog.Input
		err error
	)
	if in.Categories, err = parser.ParseCategories(payloads[models.DatasetCategories]); err != nil {
		return in, err
	}
	if in.Brands, err = parser.ParseBrands(payloads[models.DatasetBrands]); err != nil {
		return in, err
	}
	if in.Products, err = parser.ParseProducts(payloads[models.DatasetProducts]); err != nil {
		return in, err
	}
	if in.Prices, err = parser.ParsePrices(payloads[models.DatasetPrices]); err != nil {
		return in, err
	}
	if in.Balances, err = parser.ParseBalances(payloads[models.DatasetBalances]); err != nil {
		return in, err
	}
	return in, nil
}

// commit acknowledges each dataset. The catalog is already persisted, so
// failures are logged and the next incremental run receives the data again.
func (s *ExportService) commit(ctx context.Context) {
	for _, kind := range models.ExportOrder {
		ok, err := s.committer.CommitReceivingData(ctx, kind.ServiceName())
		if err != nil {
			log.Warn().Err(err).Str("dataset", kind.String()).Msg("Failed to commit received data")
			continue
		}
		if !ok {
			log.Warn().Str("dataset", kind.String()).Msg("Ultra rejected data commit")
		}
	}
}

// String is used by the CLI output.
func (r *ExportResult) String() string {
	return fmt.Sprintf("Catalog successfully exported to %s", r.Path)
}
