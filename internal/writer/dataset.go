package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lamim/storyforge/pkg/models"
)

// RoundWriter appends one JSON line per judge-revise round
type RoundWriter struct {
	file   *os.File
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewRoundWriter creates the trace file in the workspace, truncating any old one
func NewRoundWriter(ws *Workspace, logger *slog.Logger) (*RoundWriter, error) {
	path := ws.TracePath()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create round trace: %w", err)
	}

	logger.Debug("Created round trace", "path", path)

	return &RoundWriter{
		file:   file,
		logger: logger,
	}, nil
}

// RecordRound writes a single round record
func (rw *RoundWriter) RecordRound(record models.RoundRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	if _, err := rw.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write round: %w", err)
	}
	rw.count++
	return nil
}

// Count returns how many rounds were written
func (rw *RoundWriter) Count() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.count
}

// Close syncs and closes the trace file
func (rw *RoundWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if err := rw.file.Sync(); err != nil {
		rw.logger.Warn("Failed to sync round trace", "error", err)
	}

	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close round trace: %w", err)
	}

	rw.logger.Debug("Closed round trace", "rounds", rw.count)
	return nil
}
