package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lamim/storyforge/internal/config"
)

// Speech synthesizes narration for req.Input and returns the encoded audio
func (c *Client) Speech(ctx context.Context, modelCfg config.ModelConfig, apiKey string, req SpeechRequest) ([]byte, error) {
	var audio []byte
	err := c.withRetry(ctx, modelCfg, "speech", func() error {
		body, err := c.postJSON(ctx, modelCfg.BaseURL, "audio/speech", apiKey, req)
		if err != nil {
			return err
		}
		// The body is the audio itself
		if len(body) == 0 {
			return fmt.Errorf("empty audio response")
		}
		audio = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// GenerateImage requests a single image for req.Prompt
func (c *Client) GenerateImage(ctx context.Context, modelCfg config.ModelConfig, apiKey string, req ImageRequest) (*ImageResponse, error) {
	var resp ImageResponse
	err := c.withRetry(ctx, modelCfg, "image", func() error {
		body, err := c.postJSON(ctx, modelCfg.BaseURL, "images/generations", apiKey, req)
		if err != nil {
			return err
		}
		// Parse response
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to parse image response: %w", err)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no images returned in response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImageBytes returns the bytes of a generated image, decoding inline base64
// data or downloading the hosted URL.
func (c *Client) ImageBytes(ctx context.Context, img ImageData) ([]byte, error) {
	// Inline data wins over the hosted URL
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		return data, nil
	}
	if img.URL == "" {
		return nil, fmt.Errorf("image has neither url nor data")
	}
	return c.Download(ctx, img.URL)
}

// Download fetches url and returns the body
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(httpReq)
}
