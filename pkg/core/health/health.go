package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the health classification of one check or a whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// severity orders statuses so the worst one can be picked
var severity = map[Status]int{
	StatusHealthy:   0,
	StatusUnknown:   1,
	StatusDegraded:  2,
	StatusUnhealthy: 3,
}

// Worst returns the most severe of the given statuses; healthy when empty.
// Unknown counts as healthy for the overall report.
func Worst(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s == StatusUnknown {
			continue
		}
		if severity[s] > severity[worst] {
			worst = s
		}
	}
	return worst
}

// CheckResult is the outcome of one check
type CheckResult struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Duration  time.Duration          `json:"duration"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Checker reports the health of one component
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type funcChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker turns fn into a named Checker
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &funcChecker{name: name, fn: fn}
}

func (c *funcChecker) Name() string { return c.name }

func (c *funcChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// DefaultCheckTimeout bounds a single check when the caller's context has
// no earlier deadline
const DefaultCheckTimeout = 2 * time.Second

// Registry runs a set of named checks and aggregates them into a Report
type Registry struct {
	mu           sync.RWMutex
	checkers     map[string]Checker
	service      string
	version      string
	startedAt    time.Time
	checkTimeout time.Duration
}

// NewRegistry creates an empty registry for service at version
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checkers:     make(map[string]Checker),
		service:      service,
		version:      version,
		startedAt:    time.Now(),
		checkTimeout: DefaultCheckTimeout,
	}
}

// SetCheckTimeout changes the per-check timeout; d <= 0 restores the default
func (r *Registry) SetCheckTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultCheckTimeout
	}
	r.mu.Lock()
	r.checkTimeout = d
	r.mu.Unlock()
}

// Register adds or replaces the checker under its name
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds fn under name
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes the checker registered under name
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Names returns the registered check names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs all checks concurrently. A check that panics or outlives the
// per-check timeout is reported unhealthy instead of failing the report.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	timeout := r.checkTimeout
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = runCheck(ctx, c, timeout)
			return nil
		})
	}
	g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	statuses := make([]Status, len(results))
	for i, res := range results {
		statuses[i] = res.Status
	}

	return &Report{
		Service:   r.service,
		Version:   r.version,
		Status:    Worst(statuses...),
		Uptime:    time.Since(r.startedAt),
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func runCheck(ctx context.Context, c Checker, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan CheckResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("check panicked: %v", p)}
			}
		}()
		done <- c.Check(ctx)
	}()

	var result CheckResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = CheckResult{Status: StatusUnhealthy, Message: "check timed out"}
	}

	if result.Name == "" {
		result.Name = c.Name()
	}
	if result.Status == "" {
		result.Status = StatusUnknown
	}
	result.Duration = time.Since(start)
	result.Timestamp = time.Now()
	return result
}

// Report is the aggregated health of a service
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

func (r *Report) String() string {
	return fmt.Sprintf("Service: %s, Status: %s, Uptime: %v, Checks: %d",
		r.Service, r.Status, r.Uptime.Round(time.Second), len(r.Checks))
}

// HTTPStatus maps the overall status to an HTTP response code; degraded
// still answers 200
func (r *Report) HTTPStatus() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Threshold creates a checker that reports degraded once value() reaches
// warn and unhealthy once it reaches critical. A critical of 0 disables
// the unhealthy state.
func Threshold(name string, value func() float64, warn, critical float64, details func() map[string]interface{}) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		v := value()
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Message: fmt.Sprintf("value %.2f", v),
		}
		if details != nil {
			result.Details = details()
		}

		switch {
		case critical > 0 && v >= critical:
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("value %.2f at or above critical %.2f", v, critical)
		case v >= warn:
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("value %.2f at or above warning %.2f", v, warn)
		}
		return result
	})
}
