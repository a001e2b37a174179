package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	slept []time.Duration
}

func (r *recorder) sleep(d time.Duration) { r.slept = append(r.slept, d) }

func flakyProbe(failures int) (Probe, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= failures {
			return errors.New("connection refused")
		}
		return nil
	}, &calls
}

func TestAwaitReadyImmediateSuccess(t *testing.T) {
	rec := &recorder{}
	probe, calls := flakyProbe(0)
	syncRuns := 0
	s := &Supervisor{
		MaxAttempts: 5,
		Interval:    2 * time.Second,
		Probe:       probe,
		Sync:        func(context.Context) error { syncRuns++; return nil },
		Sleep:       rec.sleep,
	}

	require.NoError(t, s.AwaitReady(context.Background()))
	require.Equal(t, 1, *calls)
	require.Equal(t, 1, syncRuns)
	require.Empty(t, rec.slept)
}

func TestAwaitReadySucceedsOnFinalAttempt(t *testing.T) {
	rec := &recorder{}
	probe, calls := flakyProbe(4)
	s := &Supervisor{
		MaxAttempts: 5,
		Interval:    2 * time.Second,
		Probe:       probe,
		Sync:        func(context.Context) error { return nil },
		Sleep:       rec.sleep,
	}

	require.NoError(t, s.AwaitReady(context.Background()))
	require.Equal(t, 5, *calls)
	require.Len(t, rec.slept, 4)
	for _, d := range rec.slept {
		require.Equal(t, 2*time.Second, d)
	}
}

func TestAwaitReadyExhaustion(t *testing.T) {
	rec := &recorder{}
	calls := 0
	s := &Supervisor{
		MaxAttempts: 3,
		Interval:    time.Second,
		Probe: func(context.Context) error {
			calls++
			return errors.New("still down")
		},
		Sync:  func(context.Context) error { t.Fatal("sync must not run"); return nil },
		Sleep: rec.sleep,
	}

	err := s.AwaitReady(context.Background())
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, 3, failure.Attempts)
	require.Equal(t, 3, calls, "probe must stop after exactly MaxAttempts")
	require.Len(t, rec.slept, 2, "no sleep after the final attempt")
}

func TestAwaitReadySyncFailureIsFatal(t *testing.T) {
	probe, _ := flakyProbe(0)
	s := &Supervisor{
		MaxAttempts: 1,
		Interval:    time.Second,
		Probe:       probe,
		Sync:        func(context.Context) error { return errors.New("migration broke") },
		Sleep:       func(time.Duration) {},
	}

	err := s.AwaitReady(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema synchronization")
}
