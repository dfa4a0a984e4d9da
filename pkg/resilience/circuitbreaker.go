package resilience

import (
	"errors"
	"sync"
	"time"

	"chatonline-world/backend/pkg/logger"
)

// ErrOpen is returned by Call while the upstream is being skipped
var ErrOpen = errors.New("circuit open")

// Breaker skips an upstream for a cooldown after consecutive failures.
// Once the cooldown has passed a single trial call goes through; its
// outcome closes the breaker or restarts the cooldown. Nothing is retried.
type Breaker struct {
	upstream  string
	threshold int
	cooldown  time.Duration
	counts    func(error) bool
	log       *logger.Logger
	now       func() time.Time

	mu        sync.Mutex
	failures  int
	openUntil time.Time
	trial     bool
}

// Option tunes a Breaker
type Option func(*Breaker)

// WithThreshold sets how many consecutive failures open the breaker (default 5)
func WithThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long an open breaker skips calls (default 30s)
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) { b.cooldown = d }
}

// CountingOnly restricts which errors count as upstream failures.
// Other errors pass through and reset the failure streak.
func CountingOnly(isFailure func(error) bool) Option {
	return func(b *Breaker) { b.counts = isFailure }
}

// NewBreaker guards calls to the named upstream
func NewBreaker(upstream string, log *logger.Logger, opts ...Option) *Breaker {
	if log == nil {
		log = logger.Discard()
	}
	b := &Breaker{
		upstream:  upstream,
		threshold: 5,
		cooldown:  30 * time.Second,
		counts:    func(err error) bool { return err != nil },
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Upstream names the guarded dependency
func (b *Breaker) Upstream() string {
	return b.upstream
}

// Open reports whether calls are currently being skipped or trialled
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold
}

// Call runs fn unless the breaker is open
func (b *Breaker) Call(fn func() error) error {
	trial, ok := b.admit()
	if !ok {
		return ErrOpen
	}

	err := fn()
	b.settle(trial, err != nil && b.counts(err))
	return err
}

func (b *Breaker) admit() (trial bool, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return false, true
	}
	if b.trial || b.now().Before(b.openUntil) {
		return false, false
	}
	b.trial = true
	return true, true
}

func (b *Breaker) settle(trial, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trial {
		b.trial = false
	}

	if !failed {
		if b.failures >= b.threshold {
			b.log.Info("Upstream recovered, circuit closed", "upstream", b.upstream)
		}
		b.failures = 0
		return
	}

	b.failures++
	if trial || b.failures == b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
		b.log.Warn("Upstream failing, circuit open",
			"upstream", b.upstream,
			"failures", b.failures,
			"until", b.openUntil.Format(time.RFC3339),
		)
	}
}
