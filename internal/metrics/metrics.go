package metrics

import (
	"sync"
	"time"
)

type policyStats struct {
	solves       int
	errors       int
	lastEpsilon  int
	lastAccepted int
	lastDuration time.Duration
}

// SolveSample describes one finished solve.
type SolveSample struct {
	Duration time.Duration
	// Epsilon is the objective of the returned assignment. Ignored on error.
	Epsilon int
	// Solutions is how many feasible assignments the search reported.
	Solutions int
	Err       error
}

// Recorder captures lightweight, in-memory metrics about solves, keyed by
// selection policy, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*policyStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*policyStats),
		otel:  otel,
	}
}

// RecordSolve counts a solve under policy and stores its last outcome.
func (r *Recorder) RecordSolve(policy string, sample SolveSample) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.stats[policy]
	if !ok {
		stats = &policyStats{}
		r.stats[policy] = stats
	}
	stats.solves++
	stats.lastDuration = sample.Duration
	stats.lastAccepted = sample.Solutions
	if sample.Err != nil {
		stats.errors++
	} else {
		stats.lastEpsilon = sample.Epsilon
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSolve(policy, sample)
	}
}

// Solves returns the total solves recorded for a policy.
func (r *Recorder) Solves(policy string) int {
	return r.Snapshot(policy).Solves
}

// SolveErrors returns the failed solves recorded for a policy.
func (r *Recorder) SolveErrors(policy string) int {
	return r.Snapshot(policy).Errors
}

// Snapshot is a copy of the current stats for a policy.
type Snapshot struct {
	Solves        int
	Errors        int
	LastEpsilon   int
	LastSolutions int
	LastDuration  time.Duration
}

func (r *Recorder) Snapshot(policy string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[policy]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Solves:        stats.solves,
		Errors:        stats.errors,
		LastEpsilon:   stats.lastEpsilon,
		LastSolutions: stats.lastAccepted,
		LastDuration:  stats.lastDuration,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}
