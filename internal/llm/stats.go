package llm

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at      time.Time
	kind    string
	latency int64 // ms
	failed  bool
}

// KindStats aggregates calls of one prompt kind.
type KindStats struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	AvgMs  float64 `json:"avg_ms"`
}

// StatsSnapshot is a point-in-time aggregate of recent model calls.
type StatsSnapshot struct {
	Count  int                  `json:"count"`
	Errors int                  `json:"errors"`
	MinMs  int64                `json:"min_ms"`
	MaxMs  int64                `json:"max_ms"`
	AvgMs  float64              `json:"avg_ms"`
	P50Ms  float64              `json:"p50_ms"`
	P95Ms  float64              `json:"p95_ms"`
	P99Ms  float64              `json:"p99_ms"`
	ByKind map[string]KindStats `json:"by_kind"`
}

// Stats tracks model call latencies and failures within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		window:  window,
	}
}

// Record adds one call. Negative latencies count as zero.
func (s *Stats) Record(kind string, latency time.Duration, failed bool) {
	ms := max(latency.Milliseconds(), 0)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, kind: kind, latency: ms, failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{ByKind: map[string]KindStats{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	kindSums := map[string]int64{}
	for _, sm := range s.samples {
		values = append(values, sm.latency)
		sum += sm.latency

		ks := snap.ByKind[sm.kind]
		ks.Count++
		if sm.failed {
			ks.Errors++
			snap.Errors++
		}
		snap.ByKind[sm.kind] = ks
		kindSums[sm.kind] += sm.latency
	}
	for kind, ks := range snap.ByKind {
		ks.AvgMs = float64(kindSums[kind]) / float64(ks.Count)
		snap.ByKind[kind] = ks
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	// Samples are appended in time order, so expired ones form a prefix.
	s.samples = slices.Delete(s.samples, 0, i)
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
