package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/util"
)

const (
	promptTemperature = 0.1
	promptMaxTokens   = 3000
	imageQuality      = "standard"
	imageStyle        = "vivid"
)

// Illustrator draws one picture per paragraph. The first image is generated
// alone; the prompt the image service actually rendered for it becomes the
// consistency token appended to every later page.
type Illustrator struct {
	writer    api.Caller
	client    *api.Client
	model     config.ModelConfig
	apiKey    string
	cfg       config.AssetsConfig
	templates config.PromptTemplates
	sink      Sink
	logger    *slog.Logger
}

// NewIllustrator creates an illustrator. writer drafts the guide and scene
// prompts; client and model serve the image requests.
func NewIllustrator(
	writer api.Caller,
	client *api.Client,
	model config.ModelConfig,
	apiKey string,
	cfg config.AssetsConfig,
	templates config.PromptTemplates,
	sink Sink,
	logger *slog.Logger,
) *Illustrator {
	return &Illustrator{
		writer:    writer,
		client:    client,
		model:     model,
		apiKey:    apiKey,
		cfg:       cfg,
		templates: templates,
		sink:      sink,
		logger:    logger.With("component", "illustrator"),
	}
}

// Illustrate returns the stored page images in page order. Pages that fail
// are skipped; when the first page fails no images are produced at all.
func (il *Illustrator) Illustrate(ctx context.Context, storyID, text string) ([]string, error) {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, nil
	}

	guide, err := il.draft(ctx, il.templates.ConsistencyGuide, map[string]interface{}{"Story": text})
	if err != nil {
		return nil, fmt.Errorf("failed to build consistency guide: %w", err)
	}
	il.logger.Debug("Consistency guide", "story_id", storyID, "guide", util.TruncateString(guide, 200))

	first, token, err := il.page(ctx, storyID, 0, guide, paragraphs[0], "")
	if err != nil {
		return nil, fmt.Errorf("first page failed, skipping remaining pages: %w", err)
	}
	il.logger.Info("First page defines the characters",
		"story_id", storyID,
		"token", util.TruncateString(token, 50))

	paths := make([]string, len(paragraphs))
	paths[0] = first

	var g errgroup.Group
	g.SetLimit(max(il.cfg.MaxParallelImages, 1))
	for i := 1; i < len(paragraphs); i++ {
		g.Go(func() error {
			p, _, err := il.page(ctx, storyID, i, guide, paragraphs[i], token)
			if err != nil {
				il.logger.Warn("Skipping page", "story_id", storyID, "page", i+1, "error", err)
				return nil
			}
			paths[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}

	il.logger.Info("Illustration complete", "story_id", storyID, "pages", len(paragraphs), "images", len(out))
	return out, ctx.Err()
}

// page drafts the scene prompt for one paragraph, generates and stores its
// image, and returns the stored location and the service's revised prompt.
func (il *Illustrator) page(ctx context.Context, storyID string, index int, guide, paragraph, token string) (string, string, error) {
	prompt, err := il.draft(ctx, il.templates.ImageScene, map[string]interface{}{
		"Guide":     guide,
		"Paragraph": paragraph,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to draft scene prompt: %w", err)
	}
	if token != "" {
		prompt = prompt + " . " + token
	}

	model := il.model
	model.ModelName = il.cfg.ImageModel
	resp, err := il.client.GenerateImage(ctx, model, il.apiKey, api.ImageRequest{
		Model:   il.cfg.ImageModel,
		Prompt:  prompt,
		Size:    il.cfg.ImageSize,
		Quality: imageQuality,
		Style:   imageStyle,
		N:       1,
	})
	if err != nil {
		return "", "", err
	}

	img := resp.Data[0]
	data, err := il.client.ImageBytes(ctx, img)
	if err != nil {
		return "", "", err
	}

	key := path.Join(storyID, "images", fmt.Sprintf("page_%d.png", index+1))
	loc, err := il.sink.Put(ctx, key, data, "image/png")
	if err != nil {
		return "", "", err
	}
	return loc, img.RevisedPrompt, nil
}

func (il *Illustrator) draft(ctx context.Context, tmpl string, data map[string]interface{}) (string, error) {
	prompt, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return "", err
	}
	out, err := il.writer.Call(ctx, prompt, promptMaxTokens, promptTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// splitParagraphs returns the trimmed non-blank lines of text
func splitParagraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
