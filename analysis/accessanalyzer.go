// Package analysis aggregates access outcomes into the summary metrics shown
// alongside the simulation: the rolling hit ratio and the derived average
// access time.
package analysis

// Default cost model, in abstract time units. A hit costs HitCost; a miss
// additionally pays MissPenalty.
const (
	HitCost     = 1.0
	MissPenalty = 100.0
)

// DefaultWindowSize bounds the rolling hit/miss history.
const DefaultWindowSize = 64

// A Summary is a snapshot of the analyzer, suitable for JSON encoding.
type Summary struct {
	TotalAccesses   uint64  `json:"total_accesses"`
	WindowSize      int     `json:"window_size"`
	WindowAccesses  int     `json:"window_accesses"`
	WindowHits      int     `json:"window_hits"`
	HitRatioPercent float64 `json:"hit_ratio_percent"`
	AvgAccessTime   float64 `json:"avg_access_time"`
}

// An AccessAnalyzer keeps a bounded rolling window of hit/miss results and
// derives metrics from it.
type AccessAnalyzer struct {
	windowSize  int
	hitCost     float64
	missPenalty float64

	window []bool
	hits   int
	total  uint64
}

// RecordAccess adds one outcome to the history, dropping the oldest entry
// when the window is full.
func (a *AccessAnalyzer) RecordAccess(hit bool) {
	a.total++

	if len(a.window) == a.windowSize {
		if a.window[0] {
			a.hits--
		}
		a.window = a.window[1:]
	}

	a.window = append(a.window, hit)
	if hit {
		a.hits++
	}
}

// HitRatio returns hits over total within the window, as a fraction. It is 0
// before the first access.
func (a *AccessAnalyzer) HitRatio() float64 {
	if len(a.window) == 0 {
		return 0
	}

	return float64(a.hits) / float64(len(a.window))
}

// HitRatioPercent returns the window hit ratio as a percentage.
func (a *AccessAnalyzer) HitRatioPercent() float64 {
	return a.HitRatio() * 100
}

// AvgAccessTime returns hitCost + (1-ratio)*missPenalty over the window.
func (a *AccessAnalyzer) AvgAccessTime() float64 {
	return a.hitCost + (1-a.HitRatio())*a.missPenalty
}

// TotalAccesses returns the lifetime access count, which keeps growing after
// the window saturates.
func (a *AccessAnalyzer) TotalAccesses() uint64 {
	return a.total
}

// Summary returns a snapshot of all metrics.
func (a *AccessAnalyzer) Summary() Summary {
	return Summary{
		TotalAccesses:   a.total,
		WindowSize:      a.windowSize,
		WindowAccesses:  len(a.window),
		WindowHits:      a.hits,
		HitRatioPercent: a.HitRatioPercent(),
		AvgAccessTime:   a.AvgAccessTime(),
	}
}

// Reset discards the history and the lifetime count.
func (a *AccessAnalyzer) Reset() {
	a.window = nil
	a.hits = 0
	a.total = 0
}

// Builder can be used to build an access analyzer.
type Builder struct {
	windowSize  int
	hitCost     float64
	missPenalty float64
}

// MakeBuilder creates a builder with the default window and cost model.
func MakeBuilder() Builder {
	return Builder{
		windowSize:  DefaultWindowSize,
		hitCost:     HitCost,
		missPenalty: MissPenalty,
	}
}

// WithWindowSize sets the rolling window size.
func (b Builder) WithWindowSize(n int) Builder {
	b.windowSize = n
	return b
}

// WithHitCost sets the cost of a hit.
func (b Builder) WithHitCost(c float64) Builder {
	b.hitCost = c
	return b
}

// WithMissPenalty sets the additional cost of a miss.
func (b Builder) WithMissPenalty(p float64) Builder {
	b.missPenalty = p
	return b
}

// Build builds the analyzer.
func (b Builder) Build() *AccessAnalyzer {
	if b.windowSize <= 0 {
		panic("window size must be positive")
	}

	return &AccessAnalyzer{
		windowSize:  b.windowSize,
		hitCost:     b.hitCost,
		missPenalty: b.missPenalty,
	}
}
