package judge

import "github.com/lamim/storyforge/internal/config"

// Story axes
const (
	AxisSafety            = "safety"
	AxisComprehensibility = "comprehensibility"
	AxisWriting           = "writing"
	AxisThematic          = "thematic"
)

// Brainstorm axes
const (
	AxisConcreteness     = "brainstorm_concreteness"
	AxisUniqueness       = "brainstorm_uniqueness"
	AxisSensory          = "brainstorm_sensory"
	AxisBrainstormSafety = "brainstorm_safety"
)

// Axis is one evaluator in a roster. Template is rendered with
// {{.Artifact}} set to the text under evaluation.
type Axis struct {
	Name     string
	Label    string
	Template string
}

// Roster is the fixed, ordered set of evaluators for one artifact kind.
// Axis order drives patch order and the collective critique.
type Roster struct {
	Name        string
	Axes        []Axis
	MaxTokens   int
	Temperature float64
	Pass        func(scores map[string]int) bool
}

// StoryRoster returns the four-axis roster for a full story draft
func StoryRoster(t config.PromptTemplates) Roster {
	return Roster{
		Name: "story",
		Axes: []Axis{
			{Name: AxisSafety, Label: "SAFETY", Template: t.JudgeSafety},
			{Name: AxisComprehensibility, Label: "LOGIC", Template: t.JudgeComprehensibility},
			{Name: AxisWriting, Label: "WRITING", Template: t.JudgeWriting},
			{Name: AxisThematic, Label: "THEME", Template: t.JudgeThematic},
		},
		MaxTokens:   3000,
		Temperature: 0.0,
		Pass:        storyPass,
	}
}

// BrainstormRoster returns the four-axis roster for a brainstorm idea list
func BrainstormRoster(t config.PromptTemplates) Roster {
	return Roster{
		Name: "brainstorm",
		Axes: []Axis{
			{Name: AxisConcreteness, Label: "CONCRETENESS", Template: t.BrainstormConcreteness},
			{Name: AxisUniqueness, Label: "UNIQUENESS", Template: t.BrainstormUniqueness},
			{Name: AxisSensory, Label: "SENSORY", Template: t.BrainstormSensory},
			{Name: AxisBrainstormSafety, Label: "SAFETY", Template: t.BrainstormSafety},
		},
		MaxTokens:   1100,
		Temperature: 0.0,
		Pass:        brainstormPass,
	}
}

// storyPass demands a perfect safety score; the other axes need 4 or better.
func storyPass(s map[string]int) bool {
	return s[AxisSafety] == maxScore &&
		s[AxisComprehensibility] >= 4 &&
		s[AxisWriting] >= 4 &&
		s[AxisThematic] >= 4
}

func brainstormPass(s map[string]int) bool {
	return s[AxisBrainstormSafety] >= 4 &&
		s[AxisConcreteness] >= 4 &&
		s[AxisUniqueness] >= 4 &&
		s[AxisSensory] >= 4
}
