// Package assets produces the narration and illustrations of a finished story.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
)

// Narrator reads a story aloud with a text-to-speech model
type Narrator struct {
	client *api.Client
	model  config.ModelConfig
	apiKey string
	voice  string
	tts    string
	sink   Sink
	logger *slog.Logger
}

// NewNarrator creates a narrator that sends speech requests to model's endpoint
func NewNarrator(client *api.Client, model config.ModelConfig, apiKey string, cfg config.AssetsConfig, sink Sink, logger *slog.Logger) *Narrator {
	return &Narrator{
		client: client,
		model:  model,
		apiKey: apiKey,
		voice:  cfg.Voice,
		tts:    cfg.TTSModel,
		sink:   sink,
		logger: logger.With("component", "narrator"),
	}
}

// Narrate synthesizes text and stores it as <storyID>/audio/story.mp3
func (n *Narrator) Narrate(ctx context.Context, storyID, text string) (string, error) {
	n.logger.Info("Generating audio", "story_id", storyID, "voice", n.voice, "chars", len(text))

	model := n.model
	model.ModelName = n.tts
	audio, err := n.client.Speech(ctx, model, n.apiKey, api.SpeechRequest{
		Model: n.tts,
		Input: text,
		Voice: n.voice,
	})
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}

	loc, err := n.sink.Put(ctx, path.Join(storyID, "audio", "story.mp3"), audio, "audio/mpeg")
	if err != nil {
		return "", err
	}

	n.logger.Info("Saved audio", "story_id", storyID, "location", loc, "bytes", len(audio))
	return loc, nil
}
