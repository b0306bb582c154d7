package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is the per-story directory under the output root. It holds
// the run log, the round trace and any locally stored assets.
type Workspace struct {
	dir    string
	logger *slog.Logger
}

// NewWorkspace creates (or reuses) <root>/<storyID>
func NewWorkspace(root, storyID string, logger *slog.Logger) (*Workspace, error) {
	if err := ValidateStoryID(storyID); err != nil {
		return nil, err
	}
	if root == "" {
		root = "output"
	}

	dir := filepath.Join(root, storyID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	logger.Info("Using story workspace", "path", dir)

	return &Workspace{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the workspace directory path
func (w *Workspace) Dir() string {
	return w.dir
}

// LogPath returns the full path to the run log file
func (w *Workspace) LogPath() string {
	return filepath.Join(w.dir, "story.log")
}

// TracePath returns the full path to the per-round trace file
func (w *Workspace) TracePath() string {
	return filepath.Join(w.dir, "rounds.jsonl")
}

// ConfigBackupPath returns the full path to the config snapshot
func (w *Workspace) ConfigBackupPath() string {
	return filepath.Join(w.dir, "config.toml.bak")
}

// BackupConfig copies the config file into the workspace
func (w *Workspace) BackupConfig(configPath string) error {
	source, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	backupPath := w.ConfigBackupPath()
	if err := os.WriteFile(backupPath, source, 0644); err != nil {
		return fmt.Errorf("failed to write config backup: %w", err)
	}

	w.logger.Info("Backed up config file", "path", backupPath)
	return nil
}
