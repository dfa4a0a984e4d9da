package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream down")

func newTestBreaker(opts ...Option) (*Breaker, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := NewBreaker("geocoding", nil, opts...)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, now := newTestBreaker(WithThreshold(2), WithCooldown(time.Minute))

	calls := 0
	failing := func() error { calls++; return errUpstream }

	assert.ErrorIs(t, b.Call(failing), errUpstream)
	assert.False(t, b.Open())
	assert.ErrorIs(t, b.Call(failing), errUpstream)
	assert.True(t, b.Open())

	assert.ErrorIs(t, b.Call(failing), ErrOpen)
	assert.Equal(t, 2, calls)

	*now = now.Add(2 * time.Minute)
	assert.NoError(t, b.Call(func() error { return nil }))
	assert.False(t, b.Open())
}

func TestBreakerFailedTrialRestartsCooldown(t *testing.T) {
	b, now := newTestBreaker(WithThreshold(1), WithCooldown(time.Minute))

	_ = b.Call(func() error { return errUpstream })
	assert.True(t, b.Open())

	*now = now.Add(time.Minute)
	assert.ErrorIs(t, b.Call(func() error { return errUpstream }), errUpstream)
	assert.True(t, b.Open())

	*now = now.Add(30 * time.Second)
	assert.ErrorIs(t, b.Call(func() error { return nil }), ErrOpen)
}

func TestBreakerAdmitsOneTrialAtATime(t *testing.T) {
	b, now := newTestBreaker(WithThreshold(1), WithCooldown(time.Minute))
	_ = b.Call(func() error { return errUpstream })
	*now = now.Add(time.Minute)

	err := b.Call(func() error {
		assert.ErrorIs(t, b.Call(func() error { return nil }), ErrOpen)
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, b.Open())
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	errNotFound := errors.New("not found")
	b, _ := newTestBreaker(
		WithThreshold(1),
		CountingOnly(func(err error) bool { return !errors.Is(err, errNotFound) }),
	)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Call(func() error { return errNotFound }), errNotFound)
	}
	assert.False(t, b.Open())
	assert.Equal(t, "geocoding", b.Upstream())
}
