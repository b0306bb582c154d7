package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lamim/storyforge/internal/config"
)

func TestStoryPass(t *testing.T) {
	tests := []struct {
		name                                      string
		safety, comprehensibility, writing, theme int
		want                                      bool
	}{
		{"all perfect", 5, 5, 5, 5, true},
		{"one axis at 3", 5, 5, 5, 3, false},
		{"safety 4 is not enough", 4, 5, 5, 5, false},
		{"threshold on the others", 5, 4, 4, 4, true},
		{"clarity at 3", 5, 3, 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storyPass(map[string]int{
				AxisSafety:            tt.safety,
				AxisComprehensibility: tt.comprehensibility,
				AxisWriting:           tt.writing,
				AxisThematic:          tt.theme,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBrainstormPass(t *testing.T) {
	tests := []struct {
		name                                       string
		safety, concreteness, uniqueness, sensory int
		want                                       bool
	}{
		{"all at threshold", 4, 4, 4, 4, true},
		{"safety below", 3, 4, 4, 4, false},
		{"all perfect", 5, 5, 5, 5, true},
		{"uniqueness at 3", 5, 5, 3, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := brainstormPass(map[string]int{
				AxisBrainstormSafety: tt.safety,
				AxisConcreteness:     tt.concreteness,
				AxisUniqueness:       tt.uniqueness,
				AxisSensory:          tt.sensory,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRosters_UseConfiguredTemplates(t *testing.T) {
	templates := config.DefaultPromptTemplates()

	story := StoryRoster(templates)
	assert.Equal(t, "story", story.Name)
	assert.Equal(t, 3000, story.MaxTokens)
	assert.Zero(t, story.Temperature)
	assert.Equal(t, templates.JudgeSafety, story.Axes[0].Template)
	assert.Equal(t, []string{"SAFETY", "LOGIC", "WRITING", "THEME"}, labels(story))

	brainstorm := BrainstormRoster(templates)
	assert.Equal(t, 1100, brainstorm.MaxTokens)
	assert.Equal(t, []string{"CONCRETENESS", "UNIQUENESS", "SENSORY", "SAFETY"}, labels(brainstorm))

	for _, axis := range append(story.Axes, brainstorm.Axes...) {
		assert.Contains(t, axis.Template, "{{.Artifact}}", axis.Name)
	}
}

func labels(r Roster) []string {
	out := make([]string, len(r.Axes))
	for i, a := range r.Axes {
		out[i] = a.Label
	}
	return out
}
