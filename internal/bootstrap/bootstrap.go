// Package bootstrap gates traffic-serving readiness on the directory
// store: bounded connectivity retries, then schema synchronization.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/videoauth/auth-service/pkg/logger"
)

// Probe checks store connectivity once.
type Probe func(ctx context.Context) error

// Failure reports a store that never became reachable. Callers must
// terminate the process: the service may not accept traffic against an
// unready store.
type Failure struct {
	Attempts int
	LastErr  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("bootstrap: store unreachable after %d attempts: %v", f.Attempts, f.LastErr)
}

func (f *Failure) Unwrap() error { return f.LastErr }

// Supervisor retries the probe with a fixed interval and runs schema
// synchronization once the store answers. It runs once, synchronously,
// before the server starts listening; it is not a circuit breaker.
type Supervisor struct {
	MaxAttempts int
	Interval    time.Duration
	Probe       Probe
	Sync        func(ctx context.Context) error

	// Sleep defaults to time.Sleep; tests inject a recorder.
	Sleep func(d time.Duration)
}

// AwaitReady blocks until the store is reachable and the schema is
// current, or until MaxAttempts probes have failed.
func (s *Supervisor) AwaitReady(ctx context.Context) error {
	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		if err := s.Probe(ctx); err != nil {
			lastErr = err
			logger.Warnf("bootstrap: attempt %d/%d: store probe failed: %v", attempt, s.MaxAttempts, err)
			if attempt < s.MaxAttempts {
				sleep(s.Interval)
			}
			continue
		}

		if s.Sync != nil {
			if err := s.Sync(ctx); err != nil {
				return fmt.Errorf("bootstrap: schema synchronization: %w", err)
			}
		}
		logger.Infof("bootstrap: store ready after %d attempt(s)", attempt)
		return nil
	}
	return &Failure{Attempts: s.MaxAttempts, LastErr: lastErr}
}
