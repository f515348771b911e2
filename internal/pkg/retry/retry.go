package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

// RetryConfig is the env-configurable retry policy for an outbound
// integration. Attempts=1 disables retries, which is the default for the
// generation and embedding paths: a failed call falls through to the
// degraded-result handling instead of being retried.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"1"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.LastErrorOnly(true),
	}
}

// Do runs fn under the configured policy, honoring context cancellation.
func (rc *RetryConfig) Do(ctx context.Context, fn func() error) error {
	opts := append(rc.ToRetryOptions(), retry.Context(ctx))
	return retry.Do(fn, opts...)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
