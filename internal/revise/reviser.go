package revise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/judge"
	"github.com/lamim/storyforge/internal/metrics"
	"github.com/lamim/storyforge/internal/util"
)

// DefaultFallbackFailRate is the patch miss rate above which a story is
// rewritten by the model instead of patched.
const DefaultFallbackFailRate = 0.4

// Sampling parameters for the revision calls
const (
	rewriteTemperature    = 0.25
	rewriteMaxTokens      = 1800
	smoothTemperature     = 0.3
	smoothMaxTokens       = 1800
	brainstormTemperature = 0.9
	brainstormMaxTokens   = 900
)

// Options tune the story revision strategy
type Options struct {
	FallbackFailRate float64 // 0 selects DefaultFallbackFailRate
	Smoothing        bool
}

// StoryContext carries the upstream artifacts every story revision must respect
type StoryContext struct {
	Request string
	Plan    string
}

// Revision describes what one story revision did
type Revision struct {
	Report   []PatchResult
	Applied  int
	Missed   int
	FailRate float64
	Fallback bool
	Smoothed bool
}

// Reviser turns judge patches into revised artifacts
type Reviser struct {
	caller    api.Caller
	templates config.PromptTemplates
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewReviser creates a reviser
func NewReviser(caller api.Caller, templates config.PromptTemplates, opts Options, logger *slog.Logger) *Reviser {
	if opts.FallbackFailRate <= 0 {
		opts.FallbackFailRate = DefaultFallbackFailRate
	}
	return &Reviser{
		caller:    caller,
		templates: templates,
		opts:      opts,
		logger:    logger.With("component", "reviser"),
	}
}

// SetMetrics attaches a metrics collector; nil disables recording
func (r *Reviser) SetMetrics(m *metrics.Collector) {
	r.metrics = m
}

// ReviseStory applies agg's patches to story. When more than the configured
// share of patches miss their anchor, the deterministic result is discarded
// and the pre-round story is rewritten by the model instead. The optional
// smoothing pass runs after either path.
func (r *Reviser) ReviseStory(ctx context.Context, sc StoryContext, story string, agg *judge.Aggregate) (string, *Revision, error) {
	patched, report := ApplyPatches(story, agg.Patches)

	rev := &Revision{
		Report:   report,
		Missed:   countMissed(report),
		FailRate: FailRate(report),
	}
	rev.Applied = len(report) - rev.Missed
	r.metrics.RecordPatches(rev.Applied, rev.Missed)

	r.logger.Info("Applied patches",
		"total", len(report),
		"applied", rev.Applied,
		"missed", rev.Missed,
		"fail_rate", rev.FailRate)

	if len(agg.Patches) > 0 && rev.FailRate > r.opts.FallbackFailRate {
		r.logger.Info("Patch anchors missing, rewriting story",
			"fail_rate", rev.FailRate,
			"threshold", r.opts.FallbackFailRate)

		rewritten, err := r.rewriteStory(ctx, sc, story, agg.Patches)
		if err != nil {
			return "", rev, err
		}
		patched = rewritten
		rev.Fallback = true
		r.metrics.RecordFallback()
	}

	if r.opts.Smoothing {
		smoothed, err := r.smoothStory(ctx, sc, patched)
		if err != nil {
			return "", rev, err
		}
		patched = smoothed
		rev.Smoothed = true
	}

	return patched, rev, nil
}

func (r *Reviser) rewriteStory(ctx context.Context, sc StoryContext, story string, patches []judge.Patch) (string, error) {
	prompt, err := util.RenderTemplate(r.templates.StoryRevise, map[string]interface{}{
		"Request": sc.Request,
		"Plan":    sc.Plan,
		"Story":   story,
		"Patches": renderPatchList(patches, "QUOTE"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render story revise template: %w", err)
	}

	out, err := r.caller.Call(ctx, prompt, rewriteMaxTokens, rewriteTemperature)
	if err != nil {
		return "", fmt.Errorf("story rewrite failed: %w", err)
	}
	return out, nil
}

func (r *Reviser) smoothStory(ctx context.Context, sc StoryContext, story string) (string, error) {
	prompt, err := util.RenderTemplate(r.templates.StorySmooth, map[string]interface{}{
		"Request": sc.Request,
		"Plan":    sc.Plan,
		"Story":   story,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render smoothing template: %w", err)
	}

	out, err := r.caller.Call(ctx, prompt, smoothMaxTokens, smoothTemperature)
	if err != nil {
		return "", fmt.Errorf("smoothing pass failed: %w", err)
	}
	return out, nil
}

// ReviseBrainstorm rewrites the idea list with the judges' patches as constraints
func (r *Reviser) ReviseBrainstorm(ctx context.Context, request, brainstorm string, agg *judge.Aggregate) (string, error) {
	prompt, err := util.RenderTemplate(r.templates.BrainstormRevise, map[string]interface{}{
		"Request":    request,
		"Brainstorm": brainstorm,
		"Patches":    renderPatchList(agg.Patches, "ISSUE QUOTE"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render brainstorm revise template: %w", err)
	}

	out, err := r.caller.Call(ctx, prompt, brainstormMaxTokens, brainstormTemperature)
	if err != nil {
		return "", fmt.Errorf("brainstorm revision failed: %w", err)
	}

	r.logger.Debug("Revised brainstorm", "patches", len(agg.Patches))
	return strings.TrimSpace(out), nil
}
