// Package orchestrator runs the story pipeline: sanitize, brainstorm and
// its judge-revise loop, plan, write, the story judge-revise loop, and the
// optional narration and illustration of the final story.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/judge"
	"github.com/lamim/storyforge/internal/metrics"
	"github.com/lamim/storyforge/internal/revise"
	"github.com/lamim/storyforge/internal/util"
	"github.com/lamim/storyforge/pkg/models"
)

// stage sampling parameters
type stageParams struct {
	name        string
	temperature float64
	maxTokens   int
}

var (
	sanitizeStage   = stageParams{"sanitize", 0.0, 1000}
	brainstormStage = stageParams{"brainstorm", 1.5, 3000}
	planStage       = stageParams{"plan", 0.7, 3000}
	writeStage      = stageParams{"write", 0.4, 3000}
)

const draftPreviewLen = 200

// RoundRecorder receives a summary of every judge-revise round
type RoundRecorder interface {
	RecordRound(models.RoundRecord) error
}

// Narrator turns the final story into audio and returns its location
type Narrator interface {
	Narrate(ctx context.Context, storyID, text string) (string, error)
}

// Illustrator turns the final story into page images, in page order
type Illustrator interface {
	Illustrate(ctx context.Context, storyID, text string) ([]string, error)
}

// Generator runs the full pipeline for one request at a time
type Generator struct {
	cfg         *config.Config
	writer      api.Caller
	panel       *judge.Panel
	reviser     *revise.Reviser
	narrator    Narrator
	illustrator Illustrator
	recorder    RoundRecorder
	logger      *slog.Logger
	metrics     *metrics.Collector
}

// New creates a generator. writer serves the creative stages and revisions,
// judgeCaller serves the evaluators; they may be the same Caller.
func New(cfg *config.Config, writer, judgeCaller api.Caller, logger *slog.Logger) *Generator {
	gen := cfg.Generation
	return &Generator{
		cfg:    cfg,
		writer: writer,
		panel:  judge.NewPanel(judgeCaller, gen.CallTimeout(), logger),
		reviser: revise.NewReviser(writer, cfg.PromptTemplates, revise.Options{
			FallbackFailRate: gen.FallbackFailRate,
			Smoothing:        gen.SmoothingEnabled(),
		}, logger),
		logger: logger.With("component", "orchestrator"),
	}
}

// SetMetrics attaches a metrics collector to the generator and its judges
func (g *Generator) SetMetrics(m *metrics.Collector) {
	g.metrics = m
	g.panel.SetMetrics(m)
	g.reviser.SetMetrics(m)
}

// SetRecorder attaches a round recorder; nil disables recording
func (g *Generator) SetRecorder(r RoundRecorder) {
	g.recorder = r
}

// SetAssets attaches the narration and illustration stages. Either may be
// nil, and each only runs when enabled in the assets config.
func (g *Generator) SetAssets(n Narrator, i Illustrator) {
	g.narrator = n
	g.illustrator = i
}

// runState is the per-request mutable state: the execution log handed back
// to the caller.
type runState struct {
	storyID string
	entries []string
	logger  *slog.Logger
}

func (r *runState) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.entries = append(r.entries, msg)
	r.logger.Info(msg)
}

// Generate runs the pipeline for request. An empty storyID is replaced by a
// fresh UUID. When a stage the loops cannot route around fails, the partial
// result (Success false, log so far) is returned together with the error.
func (g *Generator) Generate(ctx context.Context, storyID, request string) (*models.StoryResult, error) {
	start := time.Now()
	if storyID == "" {
		storyID = uuid.NewString()
	}

	run := &runState{storyID: storyID, logger: g.logger.With("story_id", storyID)}
	res := &models.StoryResult{StoryID: storyID, Prompt: request}

	fail := func(err error) (*models.StoryResult, error) {
		run.log("ERROR: %v", err)
		res.Success = false
		res.Error = err.Error()
		res.ExecutionLog = run.entries
		res.Duration = time.Since(start)
		g.metrics.IncrementGeneration(false)
		return res, err
	}

	if err := config.ValidateRequest(request); err != nil {
		return fail(err)
	}

	story, err := g.compose(ctx, run, request)
	if err != nil {
		return fail(err)
	}

	res.StoryText = story
	res.Title, res.Body = SplitTitle(story)
	res.AudioPath, res.ImagePaths = g.produceAssets(ctx, run, story)

	res.Success = true
	res.ExecutionLog = run.entries
	res.Duration = time.Since(start)
	g.metrics.IncrementGeneration(true)

	g.logger.Info("Story generated",
		"story_id", storyID,
		"title", res.Title,
		"duration", res.Duration,
		"images", len(res.ImagePaths))
	return res, nil
}

// compose runs every text stage and returns the final story
func (g *Generator) compose(ctx context.Context, run *runState, request string) (string, error) {
	gen := g.cfg.Generation
	tmpl := g.cfg.PromptTemplates

	run.log("Sanitizing input...")
	sanitized, err := g.stage(ctx, sanitizeStage, tmpl.Sanitize, map[string]interface{}{
		"Request": request,
	})
	if err != nil {
		return "", err
	}
	sanitized = strings.TrimSpace(sanitized)

	run.log("Brainstorming ideas...")
	brainstorm, err := g.stage(ctx, brainstormStage, tmpl.Brainstorm, map[string]interface{}{
		"Request": sanitized,
	})
	if err != nil {
		return "", err
	}

	run.log("Brainstorm judge-revise loop...")
	ideas, err := g.runLoop(ctx, run, loopDef{
		kind:    models.LoopBrainstorm,
		label:   "Brainstorm",
		roster:  judge.BrainstormRoster(tmpl),
		cap:     gen.BrainstormRounds,
		initial: StateGenerated,
		accept:  brainstormAccept,
		revise: func(ctx context.Context, artifact string, agg *judge.Aggregate) (string, *revise.Revision, error) {
			out, err := g.reviser.ReviseBrainstorm(ctx, sanitized, artifact, agg)
			return out, nil, err
		},
	}, brainstorm)
	if err != nil {
		return "", err
	}
	run.log("Brainstorm final (%s after %d rounds): %s", ideas.State, ideas.Rounds, ideas.Final)

	run.log("Planning story...")
	plan, err := g.stage(ctx, planStage, tmpl.Plan, map[string]interface{}{
		"Request":    sanitized,
		"Brainstorm": ideas.Final,
	})
	if err != nil {
		return "", err
	}

	run.log("Writing draft 1...")
	draft, err := g.stage(ctx, writeStage, tmpl.Write, map[string]interface{}{
		"Request": sanitized,
		"Plan":    plan,
	})
	if err != nil {
		return "", err
	}
	run.log("--- DRAFT 1 PREVIEW ---\n%s", util.TruncateString(draft, draftPreviewLen))

	run.log("Entering judge-revise loop...")
	sc := revise.StoryContext{Request: sanitized, Plan: plan}
	final, err := g.runLoop(ctx, run, loopDef{
		kind:    models.LoopStory,
		label:   "Story",
		roster:  judge.StoryRoster(tmpl),
		cap:     gen.StoryRounds,
		initial: StateDrafted,
		accept:  storyAccept(gen.ClarityRevisionRequired()),
		revise: func(ctx context.Context, artifact string, agg *judge.Aggregate) (string, *revise.Revision, error) {
			return g.reviser.ReviseStory(ctx, sc, artifact, agg)
		},
	}, draft)
	if err != nil {
		return "", err
	}

	g.logger.Info("Story loop finished",
		"story_id", run.storyID,
		"state", final.State,
		"rounds", final.Rounds)
	return final.Final, nil
}

// stage renders one pipeline prompt and calls the writer model
func (g *Generator) stage(ctx context.Context, p stageParams, tmpl string, data map[string]interface{}) (string, error) {
	prompt, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", p.name, err)
	}

	start := time.Now()
	out, err := g.writer.Call(ctx, prompt, p.maxTokens, p.temperature)
	g.metrics.RecordStage(p.name, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s stage failed: %w", p.name, err)
	}
	return out, nil
}

// produceAssets narrates and illustrates story. Failures are logged and
// leave the corresponding output empty.
func (g *Generator) produceAssets(ctx context.Context, run *runState, story string) (string, []string) {
	assets := g.cfg.Assets

	var audioPath string
	if assets.EnableAudio && g.narrator != nil {
		run.log("Creating audio narration with voice %s...", assets.Voice)
		start := time.Now()
		path, err := g.narrator.Narrate(ctx, run.storyID, story)
		g.metrics.RecordStage("narrate", time.Since(start))
		if err != nil {
			run.log("Error generating audio: %v", err)
		} else {
			audioPath = path
			run.log("Saved audio to %s", path)
		}
	} else {
		run.log("[Audio generation disabled - skipping]")
	}

	var images []string
	if assets.EnableImages && g.illustrator != nil {
		run.log("Generating story images...")
		start := time.Now()
		paths, err := g.illustrator.Illustrate(ctx, run.storyID, story)
		g.metrics.RecordStage("illustrate", time.Since(start))
		if err != nil {
			run.log("Error generating images: %v", err)
		}
		images = paths
		run.log("Generated %d images", len(images))
	} else {
		run.log("[Image generation disabled - skipping]")
	}

	return audioPath, images
}
