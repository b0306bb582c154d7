package assets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testModel(url string) config.ModelConfig {
	return config.ModelConfig{
		BaseURL:            url,
		ModelName:          "writer",
		RateLimitPerMinute: 6000,
		MaxRetries:         -1,
	}
}

func testAssets() config.AssetsConfig {
	return config.AssetsConfig{
		Voice:             "alloy",
		TTSModel:          "tts-1",
		ImageModel:        "dall-e-3",
		ImageSize:         "1024x1024",
		MaxParallelImages: 2,
	}
}

func testTemplates() config.PromptTemplates {
	return config.PromptTemplates{
		ConsistencyGuide: "GUIDE\n{{.Story}}",
		ImageScene:       "SCENE|{{.Guide}}|{{.Paragraph}}",
	}
}

// promptWriter drafts a deterministic guide and scene prompt
var promptWriter = api.CallerFunc(func(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	if strings.HasPrefix(prompt, "GUIDE") {
		return "  round owl, blue scarf, watercolor  ", nil
	}
	parts := strings.Split(prompt, "|")
	return "scene: " + parts[2], nil
})

// imageServer renders every prompt as its own image bytes and fails pages
// whose prompt contains "FAIL".
type imageServer struct {
	mu      sync.Mutex
	prompts []string
}

func (s *imageServer) handler(w http.ResponseWriter, r *http.Request) {
	var req api.ImageRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	s.mu.Unlock()

	if strings.Contains(req.Prompt, "FAIL") {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "content policy"}}`))
		return
	}

	_ = json.NewEncoder(w).Encode(api.ImageResponse{Data: []api.ImageData{{
		B64JSON:       base64.StdEncoding.EncodeToString([]byte(req.Prompt)),
		RevisedPrompt: "TOKEN(" + req.Prompt + ")",
	}}})
}

func (s *imageServer) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func newIllustrator(t *testing.T, srv *imageServer) (*Illustrator, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(server.Close)

	root := t.TempDir()
	il := NewIllustrator(promptWriter, api.NewClient(testLogger(), 0), testModel(server.URL), "k",
		testAssets(), testTemplates(), NewLocalSink(root), testLogger())
	return il, root
}

func TestIllustrate_ConsistencyTokenAndOrder(t *testing.T) {
	srv := &imageServer{}
	il, root := newIllustrator(t, srv)

	story := "Title: Owl\n\nThe owl woke.\n   \nThe owl flew.\nThe owl slept."
	paths, err := il.Illustrate(context.Background(), "s1", story)
	require.NoError(t, err)

	require.Len(t, paths, 4)
	for i, p := range paths {
		assert.Equal(t, filepath.Join(root, "s1", "images", "page_"+string(rune('1'+i))+".png"), p)
	}

	first := "scene: Title: Owl"
	token := "TOKEN(" + first + ")"

	prompts := srv.sent()
	require.Len(t, prompts, 4)
	assert.Equal(t, first, prompts[0])
	assert.ElementsMatch(t, []string{
		"scene: The owl woke. . " + token,
		"scene: The owl flew. . " + token,
		"scene: The owl slept. . " + token,
	}, prompts[1:])

	page3, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "scene: The owl flew. . "+token, string(page3))
}

func TestIllustrate_SkipsFailedPages(t *testing.T) {
	srv := &imageServer{}
	il, root := newIllustrator(t, srv)

	paths, err := il.Illustrate(context.Background(), "s2", "One.\nFAIL here.\nThree.")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "s2", "images", "page_1.png"),
		filepath.Join(root, "s2", "images", "page_3.png"),
	}, paths)
}

func TestIllustrate_FirstPageFailureStopsBatch(t *testing.T) {
	srv := &imageServer{}
	il, _ := newIllustrator(t, srv)

	paths, err := il.Illustrate(context.Background(), "s3", "FAIL first.\nSecond.\nThird.")
	assert.Error(t, err)
	assert.Empty(t, paths)
	assert.Len(t, srv.sent(), 1)
}

func TestIllustrate_EmptyStory(t *testing.T) {
	il, _ := newIllustrator(t, &imageServer{})

	paths, err := il.Illustrate(context.Background(), "s4", "  \n\n ")
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestNarrate(t *testing.T) {
	var got api.SpeechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("ID3-AUDIO"))
	}))
	defer server.Close()

	root := t.TempDir()
	n := NewNarrator(api.NewClient(testLogger(), 0), testModel(server.URL), "k", testAssets(), NewLocalSink(root), testLogger())

	loc, err := n.Narrate(context.Background(), "s5", "Once upon a time.")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "s5", "audio", "story.mp3"), loc)
	assert.Equal(t, api.SpeechRequest{Model: "tts-1", Input: "Once upon a time.", Voice: "alloy"}, got)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "ID3-AUDIO", string(data))
}
