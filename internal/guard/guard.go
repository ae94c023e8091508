// Package guard bounds calls to external services with a deadline and a circuit breaker.
package guard

import (
	"context"
	"errors"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/utils"

	"github.com/sony/gobreaker"
)

// Breaker guards one external dependency. A nil *Breaker runs calls unguarded.
type Breaker struct {
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

type Settings struct {
	Timeout     time.Duration
	MaxFailures uint32
	OpenFor     time.Duration
}

func New(name string, s Settings) *Breaker {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenFor <= 0 {
		s.OpenFor = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			utils.Logger().Warnw("breaker state change", "service", name, "from", from.String(), "to", to.String())
		},
	})

	return &Breaker{name: name, timeout: s.Timeout, cb: cb}
}

// Do runs fn under the deadline. An open breaker yields DependencyError and an
// expired deadline yields TimeoutError. Other errors from fn pass through untouched.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if b == nil {
		return fn(ctx)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})

	switch {
	case err == nil:
		return nil
	case IsRejected(err):
		return domain.DependencyError{Service: b.name, Err: err}
	case errors.Is(err, context.DeadlineExceeded) && !domain.IsTimeout(err):
		return domain.TimeoutError{Service: b.name, Err: err}
	}
	return err
}

// IsRejected reports whether err came from the breaker refusing the call, in which
// case fn never ran.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) State() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

// isOutage reports the errors that count against the breaker: timeouts and unreachable services.
// Rejections such as a bad image or an unknown account mean the service is healthy.
func isOutage(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || domain.IsTimeout(err) || domain.IsDependency(err)
}
