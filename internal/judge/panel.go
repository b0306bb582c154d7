package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/metrics"
	"github.com/lamim/storyforge/internal/util"
)

// Panel runs a roster of evaluators concurrently against one artifact
type Panel struct {
	caller  api.Caller
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewPanel creates a panel. timeout bounds each evaluator call; zero means
// the call is bounded only by the parent context.
func NewPanel(caller api.Caller, timeout time.Duration, logger *slog.Logger) *Panel {
	return &Panel{
		caller:  caller,
		timeout: timeout,
		logger:  logger.With("component", "judge"),
	}
}

// SetMetrics attaches a metrics collector; nil disables recording
func (p *Panel) SetMetrics(m *metrics.Collector) {
	p.metrics = m
}

// Evaluate scores artifact on every axis of roster. A failing evaluator
// resolves to the fail-closed verdict for its axis and never affects the
// others. The only error returned is cancellation of ctx.
func (p *Panel) Evaluate(ctx context.Context, roster Roster, artifact string) (*Aggregate, error) {
	verdicts := make([]Verdict, len(roster.Axes))
	failed := make([]bool, len(roster.Axes))

	var g errgroup.Group
	for i, axis := range roster.Axes {
		g.Go(func() error {
			verdicts[i], failed[i] = p.judgeAxis(ctx, roster, axis, artifact)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s evaluation cancelled: %w", roster.Name, err)
	}

	for i, axis := range roster.Axes {
		p.metrics.RecordVerdict(roster.Name, axis.Name, verdicts[i].Score, failed[i])
	}

	return aggregate(roster, verdicts, failed), nil
}

// judgeAxis returns the verdict for one axis and whether it is the
// fail-closed substitute.
func (p *Panel) judgeAxis(ctx context.Context, roster Roster, axis Axis, artifact string) (v Verdict, failed bool) {
	logger := p.logger.With("roster", roster.Name, "axis", axis.Name)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Evaluator panicked", "panic", r)
			v, failed = FailClosed(), true
		}
	}()

	prompt, err := util.RenderTemplate(axis.Template, map[string]interface{}{
		"Artifact": artifact,
	})
	if err != nil {
		logger.Error("Failed to render judge template", "error", err)
		return FailClosed(), true
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := p.caller.Call(callCtx, prompt, roster.MaxTokens, roster.Temperature)
	if err != nil {
		logger.Warn("Judge call failed, using fail-closed verdict",
			"error", err,
			"duration", time.Since(start))
		return FailClosed(), true
	}

	v, err = decodeVerdict(raw)
	if err != nil {
		logger.Warn("Judge returned unusable JSON, using fail-closed verdict",
			"error", err,
			"response", compactJSON(raw))
		return FailClosed(), true
	}

	logger.Debug("Judge verdict",
		"score", v.Score,
		"violations", len(v.Violations),
		"duration", time.Since(start))
	return v, false
}

func aggregate(roster Roster, verdicts []Verdict, failed []bool) *Aggregate {
	agg := &Aggregate{
		Details: make(map[string]Verdict, len(roster.Axes)),
		Patches: []Patch{},
	}

	var total int
	lines := make([]string, 0, len(roster.Axes))
	for i, axis := range roster.Axes {
		v := verdicts[i]
		agg.Details[axis.Name] = v
		total += v.Score
		if failed[i] {
			agg.FailedAxes = append(agg.FailedAxes, axis.Name)
		}

		lines = append(lines, fmt.Sprintf("%s (Score %d): %s", axis.Label, v.Score, v.Critique))

		for _, viol := range v.Violations {
			quote := strings.TrimSpace(viol.Quote)
			fix := strings.TrimSpace(viol.Fix)
			if quote == "" || fix == "" || quote == fix {
				continue
			}
			agg.Patches = append(agg.Patches, Patch{
				Judge:  axis.Name,
				Quote:  quote,
				Reason: viol.Reason,
				Fix:    fix,
			})
		}
	}

	if len(roster.Axes) > 0 {
		agg.Average = float64(total) / float64(len(roster.Axes))
	}
	agg.Pass = roster.Pass(agg.Scores())
	agg.Critique = strings.Join(lines, "\n")

	return agg
}
