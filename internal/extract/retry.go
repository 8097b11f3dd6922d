package extract

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseDelay  = 15 * time.Second
	defaultMaxRetries = 7
	maxJitter         = 2 * time.Second
)

// Retryer wraps every external model call with rate-limit classification
// and exponential backoff. It is the only place retry policy is decided.
type Retryer struct {
	BaseDelay  time.Duration
	MaxRetries int

	log    zerolog.Logger
	sleep  func(time.Duration)
	jitter func() time.Duration
}

// NewRetryer creates a retryer with the default policy.
func NewRetryer(log zerolog.Logger) *Retryer {
	return &Retryer{
		BaseDelay:  defaultBaseDelay,
		MaxRetries: defaultMaxRetries,
		log:        log,
		sleep:      time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
}

// Do executes op. Rate-limited and transient failures are retried after
// sleeping baseDelay * 2^attempt plus random jitter; any other failure
// propagates immediately. Exhausting the retries re-raises the last error.
func (r *Retryer) Do(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		kind := Classify(err)
		if kind != KindRateLimited && kind != KindTransient {
			return "", err
		}
		if attempt == r.MaxRetries {
			break
		}

		delay := r.BaseDelay*time.Duration(1<<attempt) + r.jitter()
		r.log.Warn().
			Err(err).
			Str("kind", kind.String()).
			Int("attempt", attempt+1).
			Int("max_retries", r.MaxRetries).
			Dur("delay", delay).
			Msg("Model call throttled, backing off")
		r.sleep(delay)
	}

	return "", lastErr
}
