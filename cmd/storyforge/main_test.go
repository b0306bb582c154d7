package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lamim/storyforge/internal/config"
)

func TestNewClients_JudgeTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default("https://api.example.com/v1", "main-model")
	mainCfg := cfg.Models["main"]
	mainCfg.HTTPTimeoutSeconds = 300
	cfg.Models["main"] = mainCfg

	client, judgeClient := newClients(cfg, logger, nil)
	if client.Timeout() != 300*time.Second {
		t.Errorf("Expected main timeout 300s, got %v", client.Timeout())
	}
	if judgeClient.Timeout() != 300*time.Second {
		t.Errorf("Expected judge to fall back to main timeout, got %v", judgeClient.Timeout())
	}

	cfg.Models["judge"] = config.ModelConfig{
		BaseURL:            "https://api.example.com/v1",
		ModelName:          "judge-model",
		HTTPTimeoutSeconds: 30,
	}
	client, judgeClient = newClients(cfg, logger, nil)
	if client.Timeout() != 300*time.Second {
		t.Errorf("Expected main timeout 300s, got %v", client.Timeout())
	}
	if judgeClient.Timeout() != 30*time.Second {
		t.Errorf("Expected judge timeout 30s, got %v", judgeClient.Timeout())
	}
}
