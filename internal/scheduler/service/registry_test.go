package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/internal/platform/metrics"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

func quietRegistry(opts ...Option) *Registry {
	return New(append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)...)
}

func TestRegister(t *testing.T) {
	r := quietRegistry()
	noop := func(context.Context) error { return nil }

	require.NoError(t, r.Register("refresh", "@every 15m", noop))
	require.NoError(t, r.Register("purge", "0 3 * * *", noop))
	assert.Error(t, r.Register("refresh", "@hourly", noop), "duplicate name")
	assert.Error(t, r.Register("broken", "every now and then", noop))

	status := r.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "purge", status[0].Name)
	assert.Equal(t, "refresh", status[1].Name)
	assert.False(t, status[1].Active)
	assert.Nil(t, status[1].NextRunAt)
}

func TestUnknownJobIsNotFound(t *testing.T) {
	r := quietRegistry()
	_, err := r.Start("ghost")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = r.Stop("ghost")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = r.RunNow(context.Background(), "ghost")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestStartStop(t *testing.T) {
	now := time.Date(2026, 3, 1, 2, 30, 0, 0, time.UTC)
	r := quietRegistry(WithClock(func() time.Time { return now }))
	defer func() { _ = r.Shutdown(context.Background()) }()
	require.NoError(t, r.Register("purge", "0 3 * * *", func(context.Context) error { return nil }))

	started, err := r.Start("purge")
	require.NoError(t, err)
	assert.True(t, started.Active)
	require.NotNil(t, started.NextRunAt)
	assert.Equal(t, time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC), *started.NextRunAt)

	again, err := r.Start("purge")
	require.NoError(t, err)
	assert.True(t, again.Active)

	stopped, err := r.Stop("purge")
	require.NoError(t, err)
	assert.False(t, stopped.Active)
	assert.Nil(t, stopped.NextRunAt)
}

func TestRunNowRecordsOutcome(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := quietRegistry(WithMetrics(m))
	var seenTime atomic.Bool
	fail := false
	require.NoError(t, r.Register("refresh", "@hourly", func(ctx context.Context) error {
		seenTime.Store(!requestcontext.Now(ctx).IsZero())
		if fail {
			return errors.New("rates unavailable")
		}
		return nil
	}))

	status, err := r.RunNow(context.Background(), "refresh")
	require.NoError(t, err)
	assert.Equal(t, 1, status.Runs)
	assert.Empty(t, status.LastError)
	assert.NotNil(t, status.LastRunAt)
	assert.True(t, seenTime.Load())

	fail = true
	status, err = r.RunNow(context.Background(), "refresh")
	require.NoError(t, err, "job errors are recorded, not returned")
	assert.Equal(t, 2, status.Runs)
	assert.Equal(t, 1, status.Failures)
	assert.Equal(t, "rates unavailable", status.LastError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerJobRuns.WithLabelValues("refresh", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerJobRuns.WithLabelValues("refresh", "failure")))
}

func TestRunNowRecoversPanics(t *testing.T) {
	r := quietRegistry()
	require.NoError(t, r.Register("boom", "@hourly", func(context.Context) error { panic("nil map") }))

	status, err := r.RunNow(context.Background(), "boom")
	require.NoError(t, err)
	assert.Contains(t, status.LastError, "panicked: nil map")
	assert.False(t, status.Running)
}

func TestRunNowWhileRunningConflicts(t *testing.T) {
	r := quietRegistry()
	release := make(chan struct{})
	entered := make(chan struct{})
	require.NoError(t, r.Register("slow", "@hourly", func(context.Context) error {
		close(entered)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := r.RunNow(context.Background(), "slow")
		done <- err
	}()
	<-entered

	_, err := r.RunNow(context.Background(), "slow")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.True(t, r.Status()[0].Running)

	close(release)
	require.NoError(t, <-done)
}

func TestShutdownCancelsScheduledRuns(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	r := quietRegistry()
	require.NoError(t, r.Register("tick", "@every 1h", func(context.Context) error { return nil }))
	_, err := r.Start("tick")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.Error(t, r.base.Err())
}

type fakeRates struct{ calls int }

func (f *fakeRates) RefreshRates(context.Context) error {
	f.calls++
	return nil
}

type fakePurger struct{ olderThan time.Duration }

func (f *fakePurger) PurgeRead(_ context.Context, olderThan time.Duration) (int, error) {
	f.olderThan = olderThan
	return 3, nil
}

func TestRegisterDefaults(t *testing.T) {
	r := quietRegistry()
	defer func() { _ = r.Shutdown(context.Background()) }()
	rates := &fakeRates{}
	purger := &fakePurger{}
	require.NoError(t, RegisterDefaults(r, rates, purger, 30*24*time.Hour))

	_, err := r.RunNow(context.Background(), JobRefreshCurrencyRates)
	require.NoError(t, err)
	_, err = r.RunNow(context.Background(), JobPurgeReadNotifications)
	require.NoError(t, err)
	assert.Equal(t, 1, rates.calls)
	assert.Equal(t, 30*24*time.Hour, purger.olderThan)

	require.NoError(t, r.StartAll())
	for _, s := range r.Status() {
		assert.True(t, s.Active, s.Name)
	}
}
