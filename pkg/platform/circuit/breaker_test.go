package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// step is one recorded outcome and what the caller should see afterwards.
type step struct {
	ok       bool
	primary  bool // RecordSuccess: may use primary; RecordFailure: !use fallback
	opened   bool
	closed   bool
	wantOpen bool
}

func replay(t *testing.T, b *Breaker, steps []step) {
	t.Helper()
	for i, st := range steps {
		var change Change
		if st.ok {
			var usePrimary bool
			usePrimary, change = b.RecordSuccess()
			assert.Equal(t, st.primary, usePrimary, "step %d primary", i)
		} else {
			var useFallback bool
			useFallback, change = b.RecordFailure()
			assert.Equal(t, !st.primary, useFallback, "step %d fallback", i)
		}
		assert.Equal(t, st.opened, change.Opened, "step %d opened", i)
		assert.Equal(t, st.closed, change.Closed, "step %d closed", i)
		assert.Equal(t, st.wantOpen, b.IsOpen(), "step %d state", i)
	}
}

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the threshold failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{ok: false, primary: true},
				{ok: false, primary: true},
				{ok: false, opened: true, wantOpen: true},
				{ok: false, wantOpen: true},
			},
		},
		{
			name: "success clears the failure streak",
			opts: []Option{WithFailureThreshold(2)},
			steps: []step{
				{ok: false, primary: true},
				{ok: true, primary: true},
				{ok: false, primary: true},
				{ok: false, opened: true, wantOpen: true},
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{ok: false, opened: true, wantOpen: true},
				{ok: true, wantOpen: true},
				{ok: true, primary: true, closed: true},
				{ok: true, primary: true},
			},
		},
		{
			name: "failure while open restarts the success streak",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{ok: false, opened: true, wantOpen: true},
				{ok: true, wantOpen: true},
				{ok: false, wantOpen: true},
				{ok: true, wantOpen: true},
				{ok: true, primary: true, closed: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replay(t, New("kafka", tt.opts...), tt.steps)
		})
	}
}

func TestBreaker_Defaults(t *testing.T) {
	b := New("kafka")
	assert.Equal(t, "kafka", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	for range defaultFailureThreshold {
		b.RecordFailure()
	}
	assert.Equal(t, "open", b.State().String())
}

func TestBreaker_AllowProbesAfterCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := New("kafka", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(func() time.Time { return now }))

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.False(t, b.Allow(), "next probe waits for another cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow())
}
