package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/lamim/storyforge/internal/judge"
	"github.com/lamim/storyforge/internal/revise"
	"github.com/lamim/storyforge/pkg/models"
)

// LoopState is a state of a judge-revise loop
type LoopState string

const (
	StateGenerated LoopState = "generated" // brainstorm produced, not yet judged
	StateDrafted   LoopState = "drafted"   // story written, not yet judged
	StateJudged    LoopState = "judged"
	StateRevised   LoopState = "revised"
	StatePassed    LoopState = "passed"
	StateExhausted LoopState = "exhausted"
)

// LoopOutcome is the terminal result of one loop. Final is never empty
// when the loop was started with a non-empty artifact.
type LoopOutcome struct {
	Final  string
	State  LoopState
	Rounds int
	Last   *judge.Aggregate
}

// reviseFunc produces the next artifact from the current one and its verdict.
// The revision may be nil for loops that do not patch deterministically.
type reviseFunc func(ctx context.Context, artifact string, agg *judge.Aggregate) (string, *revise.Revision, error)

// acceptFunc decides whether a verdict ends the loop
type acceptFunc func(agg *judge.Aggregate, revisedOnce bool) bool

type loopDef struct {
	kind    models.LoopKind
	label   string
	roster  judge.Roster
	cap     int
	initial LoopState
	accept  acceptFunc
	revise  reviseFunc
}

// runLoop judges and revises artifact for at most def.cap rounds. Every
// round that does not end the loop revises, the last one included, so an
// exhausted loop hands back its last revision.
func (g *Generator) runLoop(ctx context.Context, run *runState, def loopDef, artifact string) (LoopOutcome, error) {
	out := LoopOutcome{Final: artifact, State: def.initial}
	revisedOnce := false

	var bar *progressbar.ProgressBar
	if g.cfg.Generation.ShowProgress {
		bar = progressbar.Default(int64(def.cap), def.label+" rounds")
		defer func() { _ = bar.Finish() }()
	}

	for round := 1; round <= def.cap; round++ {
		agg, err := g.panel.Evaluate(ctx, def.roster, out.Final)
		if err != nil {
			return out, err
		}
		out.State = StateJudged
		out.Rounds = round
		out.Last = agg

		run.log("%s: Avg Score %.1f | Passed: %t", roundLabel(def, round), agg.Average, agg.Pass)
		for _, axis := range def.roster.Axes {
			run.log("   %s: %d/5", axis.Label, agg.Score(axis.Name))
		}
		g.metrics.RecordRound(string(def.kind), agg.Pass)

		record := models.RoundRecord{
			StoryID:  run.storyID,
			Loop:     def.kind,
			Round:    round,
			Scores:   agg.Scores(),
			Average:  agg.Average,
			Passed:   agg.Pass,
			Patches:  len(agg.Patches),
			Critique: agg.Critique,
		}

		if def.accept(agg, revisedOnce) {
			record.Accepted = true
			g.record(record)
			out.State = StatePassed
			run.log("*** ALL %s JUDGES SATISFIED ***", strings.ToUpper(string(def.kind)))
			g.metrics.RecordLoopOutcome(string(def.kind), string(out.State))
			if bar != nil {
				_ = bar.Set(def.cap)
			}
			return out, nil
		}
		if agg.Pass {
			run.log("Verdict passed but clarity is below 5 before any revision. Revising...")
		} else {
			run.log("Critiques received. Revising...")
		}

		revised, rev, err := def.revise(ctx, out.Final, agg)
		if err != nil {
			g.record(record)
			return out, fmt.Errorf("%s revision in round %d failed: %w", def.kind, round, err)
		}
		if rev != nil {
			record.Applied = rev.Applied
			record.Fallback = rev.Fallback
			record.Smoothed = rev.Smoothed
			if rev.Fallback {
				run.log("   %d of %d patches missed their anchor, rewrote the story", rev.Missed, len(rev.Report))
			}
		}
		g.record(record)

		out.Final = revised
		out.State = StateRevised
		revisedOnce = true

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	out.State = StateExhausted
	run.log("Max iterations reached (%d). Proceeding with current version.", def.cap)
	g.metrics.RecordLoopOutcome(string(def.kind), string(out.State))
	return out, nil
}

func roundLabel(def loopDef, round int) string {
	if def.kind == models.LoopBrainstorm {
		return fmt.Sprintf("Brainstorm Round %d", round)
	}
	return fmt.Sprintf("Round %d", round)
}

func (g *Generator) record(r models.RoundRecord) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.RecordRound(r); err != nil {
		g.logger.Warn("Failed to record round", "loop", r.Loop, "round", r.Round, "error", err)
	}
}

// storyAccept applies the clarity policy on top of the roster verdict: a
// pass without any revision yet is only accepted with a perfect clarity score.
func storyAccept(requireClarityRevision bool) acceptFunc {
	return func(agg *judge.Aggregate, revisedOnce bool) bool {
		if !agg.Pass {
			return false
		}
		if requireClarityRevision && !revisedOnce && agg.Score(judge.AxisComprehensibility) < 5 {
			return false
		}
		return true
	}
}

func brainstormAccept(agg *judge.Aggregate, _ bool) bool {
	return agg.Pass
}
