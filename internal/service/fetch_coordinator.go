package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/ultra_import/internal/metrics"
	"github.com/GTDGit/ultra_import/internal/models"
	"github.com/GTDGit/ultra_import/internal/utils"
	"github.com/GTDGit/ultra_import/pkg/ultra"
)

// statusOK is the success marker returned by getDataByID.
const statusOK = "OK"

// RemoteSession is the request/poll/retrieve surface of the Ultra web service.
// *ultra.Session implements it.
type RemoteSession interface {
	RequestData(ctx context.Context, service string, all bool, additionalParameters *string, compress bool) (string, error)
	IsReady(ctx context.Context, id string) (bool, error)
	GetDataByID(ctx context.Context, id string) (*ultra.DataResult, error)
}

// RemoteServiceError reports a dataset the service refused to deliver, either
// with a definitive failure status or by never becoming ready.
type RemoteServiceError struct {
	Dataset  models.DatasetKind
	Message  string
	Attempts int
	Timeout  bool
}

func (e *RemoteServiceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("ultra %s request was not ready after %d attempts", e.Dataset, e.Attempts)
	}
	return fmt.Sprintf("ultra %s request failed: %s", e.Dataset, e.Message)
}

func (e *RemoteServiceError) Is(target error) bool {
	return target == utils.ErrRemoteService
}

// FetchOptions controls a single dataset request.
type FetchOptions struct {
	FullSync    bool
	ExtraParams *string
	Compress    bool
}

// FetchCoordinator runs the request, poll and retrieve cycle for one dataset
// at a time.
type FetchCoordinator struct {
	session      RemoteSession
	maxAttempts  int
	pollInterval time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewFetchCoordinator constructs a FetchCoordinator. maxAttempts below 1 is
// treated as 1.
func NewFetchCoordinator(session RemoteSession, maxAttempts int, pollInterval time.Duration) *FetchCoordinator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FetchCoordinator{
		session:      session,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		sleep:        sleepContext,
	}
}

// Fetch requests the dataset and returns its raw payload.
func (c *FetchCoordinator) Fetch(ctx context.Context, kind models.DatasetKind, fullSync bool) (string, error) {
	return c.FetchWith(ctx, kind, FetchOptions{FullSync: fullSync})
}

// FetchWith is Fetch with the optional request parameters exposed.
// The returned payload may be empty, meaning the dataset has no records.
func (c *FetchCoordinator) FetchWith(ctx context.Context, kind models.DatasetKind, opts FetchOptions) (string, error) {
	logger := log.With().Str("dataset", kind.String()).Logger()

	id, err := c.session.RequestData(ctx, kind.ServiceName(), opts.FullSync, opts.ExtraParams, opts.Compress)
	if err != nil {
		metrics.RecordFetch(kind.String(), metrics.ResultError)
		return "", fmt.Errorf("request %s: %w", kind, err)
	}
	logger.Debug().Str("request_id", id).Bool("full_sync", opts.FullSync).Msg("Ultra dataset requested")

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		metrics.FetchPollsTotal.WithLabelValues(kind.String()).Inc()

		ready, err := c.session.IsReady(ctx, id)
		if err != nil {
			metrics.RecordFetch(kind.String(), metrics.ResultError)
			return "", fmt.Errorf("poll %s: %w", kind, err)
		}

		if !ready {
			logger.Debug().Str("request_id", id).Int("attempt", attempt).Msg("Ultra dataset not ready")
			if attempt == c.maxAttempts {
				break
			}
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				metrics.RecordFetch(kind.String(), metrics.ResultError)
				return "", fmt.Errorf("poll %s: %w", kind, err)
			}
			continue
		}

		result, err := c.session.GetDataByID(ctx, id)
		if err != nil {
			metrics.RecordFetch(kind.String(), metrics.ResultError)
			return "", fmt.Errorf("retrieve %s: %w", kind, err)
		}

		status := strings.ToUpper(strings.TrimSpace(result.Message))
		if status != statusOK && result.Data == "" {
			metrics.RecordFetch(kind.String(), metrics.ResultFailed)
			logger.Warn().Str("request_id", id).Str("message", result.Message).Msg("Ultra dataset request failed")
			return "", &RemoteServiceError{Dataset: kind, Message: result.Message, Attempts: attempt}
		}

		metrics.RecordFetch(kind.String(), metrics.ResultSuccess)
		logger.Info().
			Str("request_id", id).
			Int("attempt", attempt).
			Int("bytes", len(result.Data)).
			Msg("Ultra dataset received")
		return result.Data, nil
	}

	metrics.RecordFetch(kind.String(), metrics.ResultTimeout)
	logger.Warn().Str("request_id", id).Int("attempts", c.maxAttempts).Msg("Ultra dataset not ready, giving up")
	return "", &RemoteServiceError{Dataset: kind, Attempts: c.maxAttempts, Timeout: true}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
