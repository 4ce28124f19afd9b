package fetch

import (
	"context"
	"time"

	"mod-builder/core/apperr"

	"go.uber.org/zap"
)

// Op fetches one asset from one mirror.
type Op func(ctx context.Context, mirror string) ([]byte, error)

// Backoff is a capped exponential delay policy.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	mult := b.Multiplier
	if mult < 1 {
		mult = 2
	}
	d := float64(b.Initial)
	for i := 0; i < attempt; i++ {
		d *= mult
		if b.Max > 0 && d >= float64(b.Max) {
			return b.Max
		}
	}
	if b.Max > 0 && time.Duration(d) > b.Max {
		return b.Max
	}
	return time.Duration(d)
}

// Fetcher retries an Op across an ordered list of mirrors.
type Fetcher struct {
	// MaxAttempts is the retry budget per mirror.
	MaxAttempts int
	// Backoff spaces retries on the same mirror.
	Backoff Backoff

	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Fetcher from configuration.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		MaxAttempts: attempts,
		Backoff:     cfg.Backoff(),
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Fetch tries each mirror in order. Transient failures are retried on the
// same mirror with exponential backoff; permanent ones (see IsPermanent) skip
// straight to the next mirror. Cancellation returns immediately, including
// during a backoff wait. When every mirror fails a *NetworkError is returned.
func (f *Fetcher) Fetch(ctx context.Context, mirrors []string, op Op) ([]byte, error) {
	if len(mirrors) == 0 {
		return nil, apperr.Validation("no mirrors configured")
	}
	maxAttempts := f.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	logger := f.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	netErr := &NetworkError{}
	for _, mirror := range mirrors {
		var lastErr error
		attempts := 0
		for attempts < maxAttempts {
			if err := ctx.Err(); err != nil {
				return nil, apperr.Cancelled(err)
			}
			attempts++
			data, err := op(ctx, mirror)
			if err == nil {
				if attempts > 1 || len(netErr.Failures) > 0 {
					logger.Info("Fetch succeeded after failures",
						zap.String("mirror", mirror),
						zap.Int("attempt", attempts),
						zap.Int("failed_mirrors", len(netErr.Failures)))
				}
				return data, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, apperr.Cancelled(ctxErr)
			}
			lastErr = err
			if IsPermanent(err) {
				logger.Warn("Mirror unavailable, trying next", zap.String("mirror", mirror), zap.Error(err))
				break
			}
			if attempts >= maxAttempts {
				break
			}
			delay := f.Backoff.Delay(attempts - 1)
			logger.Warn("Fetch attempt failed, retrying",
				zap.String("mirror", mirror),
				zap.Int("attempt", attempts),
				zap.Duration("backoff", delay),
				zap.Error(err))
			if err := sleep(ctx, delay); err != nil {
				return nil, apperr.Cancelled(err)
			}
		}
		netErr.Failures = append(netErr.Failures, MirrorFailure{Mirror: mirror, Attempts: attempts, Err: lastErr})
		netErr.Last = lastErr
	}
	return nil, netErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
