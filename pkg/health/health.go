// Package health runs registered component probes concurrently and
// aggregates them into a report suitable for liveness and readiness
// endpoints. The matcher library registers its frequency providers here so
// a hosting service can surface their availability.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status is the health state of a component or of the system overall.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check probes one component. Implementations should respect ctx deadlines;
// the checker imposes its own per-probe timeout on top.
type Check func(ctx context.Context) ComponentHealth

// ComponentHealth is the result of a single probe.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report aggregates all component probes. Status is down if any component
// is down.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

// Checker holds named probes and runs them in parallel.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewChecker returns an empty checker with a 5s per-probe timeout.
func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]Check),
		timeout: 5 * time.Second,
	}
}

// WithTimeout sets the per-probe timeout.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
	return c
}

// Register adds or replaces a named probe.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// Names returns the registered probe names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes every probe concurrently and aggregates the results.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	timeout := c.timeout
	c.mu.RUnlock()

	type result struct {
		name   string
		health ComponentHealth
	}
	results := make(chan result, len(checks))
	for name, check := range checks {
		go func(name string, check Check) {
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan ComponentHealth, 1)
			go func() { done <- check(probeCtx) }()
			select {
			case h := <-done:
				results <- result{name, h}
			case <-probeCtx.Done():
				results <- result{name, ComponentHealth{
					Status:  StatusDown,
					Message: "probe timed out",
					Latency: timeout.String(),
				}}
			}
		}(name, check)
	}

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(checks)),
		CheckedAt:  time.Now().UTC(),
	}
	for range checks {
		r := <-results
		report.Components[r.name] = r.health
		if r.health.Status == StatusDown {
			report.Status = StatusDown
		}
	}
	return report
}

// LiveHandler reports process liveness; it never runs probes.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": string(StatusUp)})
	}
}

// ReadyHandler runs all probes and reports 503 when any component is down.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.Status != StatusUp {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}
