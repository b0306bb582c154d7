package metrics

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_api_request_duration_seconds",
			Help:    "API request duration in seconds by model and endpoint kind",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"model", "kind", "status"}, // kind: "chat", "speech", "image"
	)

	rateLimiterWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_rate_limiter_wait_duration_seconds",
			Help:    "Rate limiter wait duration in seconds by model",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"model"},
	)

	// Judge metrics
	judgeScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_judge_score",
			Help:    "Scores returned by each judge axis",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"loop", "axis"},
	)

	judgeFailClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_judge_fail_closed_total",
			Help: "Judge calls that fell back to the fail-closed verdict",
		},
		[]string{"loop", "axis"},
	)

	// Loop metrics
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_rounds_total",
			Help: "Judge-revise rounds by loop and verdict",
		},
		[]string{"loop", "passed"},
	)

	loopOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_loop_outcomes_total",
			Help: "Terminal loop states (passed or exhausted)",
		},
		[]string{"loop", "state"},
	)

	patchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_patches_total",
			Help: "Deterministic patch attempts by result",
		},
		[]string{"result"}, // "applied", "missed"
	)

	rewriteFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storyforge_rewrite_fallbacks_total",
			Help: "Revisions that escalated to a model rewrite",
		},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_stage_duration_seconds",
			Help:    "Pipeline stage duration breakdown",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~500s
		},
		[]string{"stage"},
	)

	// Generation metrics
	generationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_generation_total",
			Help: "Total number of story generations",
		},
		[]string{"status"},
	)
)

// Collector provides convenience methods for recording metrics.
// All methods are safe to call on a nil *Collector.
type Collector struct {
	logger *slog.Logger
}

// NewCollector creates a new metrics collector
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger: logger,
	}
}

// RecordAPIRequest records an API request duration
func (c *Collector) RecordAPIRequest(model, kind string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	apiRequestDuration.WithLabelValues(model, kind, status(success)).Observe(duration.Seconds())
}

// RecordRateLimiterWait records rate limiter wait time
func (c *Collector) RecordRateLimiterWait(model string, duration time.Duration) {
	if c == nil {
		return
	}
	rateLimiterWaitDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordVerdict records one judge axis result
func (c *Collector) RecordVerdict(loop, axis string, score int, failClosed bool) {
	if c == nil {
		return
	}
	judgeScores.WithLabelValues(loop, axis).Observe(float64(score))
	if failClosed {
		judgeFailClosed.WithLabelValues(loop, axis).Inc()
	}
}

// RecordRound records a completed judge round
func (c *Collector) RecordRound(loop string, passed bool) {
	if c == nil {
		return
	}
	roundsTotal.WithLabelValues(loop, strconv.FormatBool(passed)).Inc()
}

// RecordLoopOutcome records the terminal state of a loop
func (c *Collector) RecordLoopOutcome(loop, state string) {
	if c == nil {
		return
	}
	loopOutcomes.WithLabelValues(loop, state).Inc()
}

// RecordPatches records the result of a deterministic patch pass
func (c *Collector) RecordPatches(applied, missed int) {
	if c == nil {
		return
	}
	patchesTotal.WithLabelValues("applied").Add(float64(applied))
	patchesTotal.WithLabelValues("missed").Add(float64(missed))
}

// RecordFallback records an escalation to a model rewrite
func (c *Collector) RecordFallback() {
	if c == nil {
		return
	}
	rewriteFallbacks.Inc()
}

// RecordStage records how long a pipeline stage took
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if c == nil {
		return
	}
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// IncrementGeneration increments the generation counter
func (c *Collector) IncrementGeneration(success bool) {
	if c == nil {
		return
	}
	generationTotal.WithLabelValues(status(success)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
