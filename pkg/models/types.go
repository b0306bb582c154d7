package models

import "time"

// LoopKind identifies which judge-revise loop produced a round
type LoopKind string

const (
	// LoopBrainstorm is the idea-list loop that runs before planning
	LoopBrainstorm LoopKind = "brainstorm"
	// LoopStory is the full-story loop that runs after the first draft
	LoopStory LoopKind = "story"
)

// StoryResult is what a generation run hands back to its caller.
// On failure Success is false, Error is set and ExecutionLog holds the
// entries accumulated before the failure.
type StoryResult struct {
	Success      bool          `json:"success"`
	StoryID      string        `json:"story_uuid"`
	Prompt       string        `json:"prompt"`
	ExecutionLog []string      `json:"execution_log"`
	StoryText    string        `json:"story_text,omitempty"`
	Title        string        `json:"title,omitempty"`
	Body         string        `json:"story_body,omitempty"`
	AudioPath    string        `json:"audio_path,omitempty"`
	ImagePaths   []string      `json:"image_paths,omitempty"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// RoundRecord summarizes one judge-revise round for the trace file
type RoundRecord struct {
	StoryID  string         `json:"story_id"`
	Loop     LoopKind       `json:"loop"`
	Round    int            `json:"round"`
	Scores   map[string]int `json:"scores"`
	Average  float64        `json:"average_score"`
	Passed   bool           `json:"passed"`
	Accepted bool           `json:"accepted"`
	Patches  int            `json:"patches"`
	Applied  int            `json:"applied"`
	Fallback bool           `json:"fallback"`
	Smoothed bool           `json:"smoothed"`
	Critique string         `json:"critique"`
}

// StoryRecord is the persisted form of a finished story
type StoryRecord struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	Prompt       string     `json:"prompt"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	StoryText    string     `json:"story_text"`
	AudioPath    string     `json:"audio_path,omitempty"`
	ImagePaths   StringList `json:"image_paths"`
	ExecutionLog StringList `json:"execution_log"`
}

// NewStoryRecord builds a record from a successful result
func NewStoryRecord(res *StoryResult) *StoryRecord {
	return &StoryRecord{
		ID:           res.StoryID,
		CreatedAt:    time.Now().UTC(),
		Prompt:       res.Prompt,
		Title:        res.Title,
		Body:         res.Body,
		StoryText:    res.StoryText,
		AudioPath:    res.AudioPath,
		ImagePaths:   StringList(res.ImagePaths),
		ExecutionLog: StringList(res.ExecutionLog),
	}
}
