package revise

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/judge"
)

type call struct {
	prompt      string
	maxTokens   int
	temperature float64
}

// recorder is a fake model that answers with a fixed reply per template kind
type recorder struct {
	calls []call
	reply func(prompt string) (string, error)
}

func (r *recorder) Call(_ context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	r.calls = append(r.calls, call{prompt, maxTokens, temperature})
	return r.reply(prompt)
}

var _ api.Caller = (*recorder)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTemplates() config.PromptTemplates {
	return config.PromptTemplates{
		StoryRevise:      "REWRITE req={{.Request}} plan={{.Plan}}\n{{.Story}}\n{{.Patches}}",
		StorySmooth:      "SMOOTH req={{.Request}} plan={{.Plan}}\n{{.Story}}",
		BrainstormRevise: "IDEAS req={{.Request}}\n{{.Brainstorm}}\n{{.Patches}}",
	}
}

func fivePatches(anchored int) []judge.Patch {
	quotes := []string{"One.", "Two.", "Three.", "Four.", "Five."}
	patches := make([]judge.Patch, len(quotes))
	for i, q := range quotes {
		if i >= anchored {
			q = "Missing " + q
		}
		patches[i] = judge.Patch{Judge: judge.AxisWriting, Quote: q, Fix: "Fixed" + q}
	}
	return patches
}

const fiveSentences = "One. Two. Three. Four. Five."

func TestReviseStory_EscalatesAboveThreshold(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "Title: Rewritten\n\nNew story.", nil }}
	r := NewReviser(model, testTemplates(), Options{Smoothing: false}, testLogger())

	agg := &judge.Aggregate{Patches: fivePatches(2)}
	out, rev, err := r.ReviseStory(context.Background(), StoryContext{Request: "owls", Plan: "plan"}, fiveSentences, agg)
	require.NoError(t, err)

	assert.Equal(t, "Title: Rewritten\n\nNew story.", out)
	assert.True(t, rev.Fallback)
	assert.Equal(t, 2, rev.Applied)
	assert.Equal(t, 3, rev.Missed)
	assert.InDelta(t, 0.6, rev.FailRate, 1e-9)

	require.Len(t, model.calls, 1)
	c := model.calls[0]
	assert.Equal(t, 1800, c.maxTokens)
	assert.Equal(t, 0.25, c.temperature)
	// the rewrite sees the pre-round story, not the partially patched one
	assert.Contains(t, c.prompt, "\n"+fiveSentences+"\n")
	assert.Contains(t, c.prompt, "- QUOTE: One.\n  FIX: FixedOne.")
	assert.Contains(t, c.prompt, "req=owls plan=plan")
}

func TestReviseStory_DeterministicBelowThreshold(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "", errors.New("must not be called") }}
	r := NewReviser(model, testTemplates(), Options{Smoothing: false}, testLogger())

	agg := &judge.Aggregate{Patches: fivePatches(4)}
	out, rev, err := r.ReviseStory(context.Background(), StoryContext{}, fiveSentences, agg)
	require.NoError(t, err)

	assert.Equal(t, "FixedOne. FixedTwo. FixedThree. FixedFour. Five.", out)
	assert.False(t, rev.Fallback)
	assert.InDelta(t, 0.2, rev.FailRate, 1e-9)
	assert.Empty(t, model.calls)
}

func TestReviseStory_ExactlyAtThresholdDoesNotEscalate(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "", errors.New("must not be called") }}
	r := NewReviser(model, testTemplates(), Options{FallbackFailRate: 0.5}, testLogger())

	agg := &judge.Aggregate{Patches: []judge.Patch{
		{Quote: "One.", Fix: "Uno."},
		{Quote: "Zero.", Fix: "Cero."},
	}}
	out, rev, err := r.ReviseStory(context.Background(), StoryContext{}, fiveSentences, agg)
	require.NoError(t, err)
	assert.False(t, rev.Fallback)
	assert.Equal(t, "Uno. Two. Three. Four. Five.", out)
}

func TestReviseStory_SmoothingRunsAfterPatching(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "smoothed story", nil }}
	r := NewReviser(model, testTemplates(), Options{Smoothing: true}, testLogger())

	agg := &judge.Aggregate{Patches: []judge.Patch{{Quote: "Two.", Fix: "Deux."}}}
	out, rev, err := r.ReviseStory(context.Background(), StoryContext{Request: "r", Plan: "p"}, fiveSentences, agg)
	require.NoError(t, err)

	assert.Equal(t, "smoothed story", out)
	assert.True(t, rev.Smoothed)
	assert.False(t, rev.Fallback)
	require.Len(t, model.calls, 1)
	assert.Equal(t, 0.3, model.calls[0].temperature)
	assert.Contains(t, model.calls[0].prompt, "SMOOTH req=r plan=p\nOne. Deux. Three. Four. Five.")
}

func TestReviseStory_NoPatchesNoFallback(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "", errors.New("must not be called") }}
	r := NewReviser(model, testTemplates(), Options{}, testLogger())

	out, rev, err := r.ReviseStory(context.Background(), StoryContext{}, "unchanged", &judge.Aggregate{})
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
	assert.Zero(t, rev.FailRate)
	assert.False(t, rev.Fallback)
}

func TestReviseStory_RewriteErrorPropagates(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "", errors.New("upstream down") }}
	r := NewReviser(model, testTemplates(), Options{}, testLogger())

	agg := &judge.Aggregate{Patches: []judge.Patch{{Quote: "absent", Fix: "x"}}}
	_, _, err := r.ReviseStory(context.Background(), StoryContext{}, "story", agg)
	assert.ErrorContains(t, err, "upstream down")
}

func TestReviseBrainstorm(t *testing.T) {
	model := &recorder{reply: func(string) (string, error) { return "\n 1. Idea one\n2. Idea two\n3. Idea three \n", nil }}
	r := NewReviser(model, testTemplates(), Options{}, testLogger())

	agg := &judge.Aggregate{Patches: []judge.Patch{{Quote: "a sad cloud", Fix: "a cloud that leaks one raindrop per minute"}}}
	out, err := r.ReviseBrainstorm(context.Background(), "clouds", "1. a sad cloud", agg)
	require.NoError(t, err)

	assert.Equal(t, "1. Idea one\n2. Idea two\n3. Idea three", out)
	require.Len(t, model.calls, 1)
	assert.Equal(t, 900, model.calls[0].maxTokens)
	assert.Equal(t, 0.9, model.calls[0].temperature)
	assert.Contains(t, model.calls[0].prompt, "- ISSUE QUOTE: a sad cloud\n  FIX: a cloud that leaks one raindrop per minute")
}
