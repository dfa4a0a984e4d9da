package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"chatonline-world/backend/pkg/logger"
)

// Status of one watched dependency
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Report is the last observation of one dependency
type Report struct {
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type watch struct {
	name     string
	critical bool // service is unavailable while down
	run      func(ctx context.Context) Report
}

// Checker watches the database, the response cache and the upstream
// circuits in the background and serves the last results as JSON.
type Checker struct {
	log     *logger.Logger
	every   time.Duration
	timeout time.Duration

	mu      sync.RWMutex
	watches []watch
	reports map[string]Report
}

// NewChecker returns a checker that refreshes every period
func NewChecker(log *logger.Logger, every time.Duration) *Checker {
	return &Checker{
		log:     log,
		every:   every,
		timeout: 2 * time.Second,
		reports: make(map[string]Report),
	}
}

func (c *Checker) add(p watch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watches = append(c.watches, p)
	c.reports[p.name] = Report{Status: StatusDown, Detail: "not checked yet"}
}

// WatchDatabase marks the service unavailable while ping fails
func (c *Checker) WatchDatabase(ping func(ctx context.Context) error) {
	c.add(watch{name: "database", critical: true, run: func(ctx context.Context) Report {
		if err := ping(ctx); err != nil {
			return Report{Status: StatusDown, Error: err.Error()}
		}
		return Report{Status: StatusUp}
	}})
}

// WatchCache reports the response cache backend. An unreachable cache only
// degrades the service, since requests fall through to the handlers.
// ping may be nil for in-process stores.
func (c *Checker) WatchCache(backend string, ping func(ctx context.Context) error, size func() int) {
	c.add(watch{name: "cache", run: func(ctx context.Context) Report {
		if ping != nil {
			if err := ping(ctx); err != nil {
				return Report{Status: StatusDegraded, Detail: backend, Error: err.Error()}
			}
		}
		detail := backend
		if size != nil {
			detail = backend + ", " + strconv.Itoa(size()) + " entries"
		}
		return Report{Status: StatusUp, Detail: detail}
	}})
}

// WatchCircuit reports an upstream as degraded while its circuit is open
func (c *Checker) WatchCircuit(upstream string, open func() bool) {
	c.add(watch{name: upstream, run: func(context.Context) Report {
		if open() {
			return Report{Status: StatusDegraded, Detail: "circuit open"}
		}
		return Report{Status: StatusUp, Detail: "circuit closed"}
	}})
}

// Refresh runs every watch once
func (c *Checker) Refresh(ctx context.Context) {
	c.mu.RLock()
	watches := append([]watch(nil), c.watches...)
	c.mu.RUnlock()

	for _, p := range watches {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		r := p.run(pctx)
		cancel()
		r.CheckedAt = time.Now().UTC()

		if r.Status != StatusUp {
			c.log.Warn("Dependency unhealthy", "component", p.name, "status", string(r.Status), "error", r.Error)
		}

		c.mu.Lock()
		c.reports[p.name] = r
		c.mu.Unlock()
	}
}

// Start refreshes immediately and then periodically until ctx is done
func (c *Checker) Start(ctx context.Context) {
	go func() {
		c.Refresh(ctx)

		ticker := time.NewTicker(c.every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Healthy is false while a critical dependency is down
func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.watches {
		if p.critical && c.reports[p.name].Status == StatusDown {
			return false
		}
	}
	return true
}

// Snapshot copies the latest reports
func (c *Checker) Snapshot() map[string]Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Report, len(c.reports))
	for k, v := range c.reports {
		out[k] = v
	}
	return out
}

// ServeHTTP answers 200 {"status":"ok"} or 503 {"status":"unavailable"}
// with the per-component reports.
func (c *Checker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status, code := "ok", http.StatusOK
	if !c.Healthy() {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"components": c.Snapshot(),
	})
	if err != nil {
		c.log.Error("Failed to encode health response", "error", err.Error())
	}
}
