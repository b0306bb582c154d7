package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedReplyWithProse(t *testing.T) {
	raw := "Here is my review:\n```json\n" + `{
  "score": 4,
  "metrics": {"unsafe_items": 0, "note": "ignored"},
  "critique": "Gentle and warm.",
  "violations": [
    {"quote": "  It was scary.  ", "reason": "too intense", "fix": "It was a little spooky."}
  ]
}` + "\n```\nThanks!"

	v := Parse(raw, FailClosed())

	assert.Equal(t, 4, v.Score)
	assert.Equal(t, map[string]int{"unsafe_items": 0}, v.Metrics)
	assert.Equal(t, "Gentle and warm.", v.Critique)
	require.Len(t, v.Violations, 1)
	assert.Equal(t, Violation{Quote: "It was scary.", Reason: "too intense", Fix: "It was a little spooky."}, v.Violations[0])
}

func TestParse_InvalidInputReturnsDefault(t *testing.T) {
	inputs := []string{
		"",
		"no json here at all",
		"{not valid json}",
		"```json\n{\"score\": 5,\n```",
		"} backwards {",
		"[1, 2, 3]",
		"null",
		`{"score": "excellent"}`,
		`{"score": true}`,
		`{"score": 5} {"score": 4}`,
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			v := Parse(raw, FailClosed())
			assert.Equal(t, FailClosed(), v)
		})
	}
}

func TestParse_ReturnsCopyOfCustomDefault(t *testing.T) {
	def := Verdict{
		Score:      2,
		Metrics:    map[string]int{"x": 1},
		Critique:   "fallback",
		Violations: []Violation{{Quote: "q", Fix: "f"}},
	}

	v := Parse("garbage", def)
	assert.Equal(t, def, v)

	v.Metrics["x"] = 99
	v.Violations[0].Quote = "changed"
	assert.Equal(t, 1, def.Metrics["x"])
	assert.Equal(t, "q", def.Violations[0].Quote)
}

func TestParse_MissingKeysAreDefaulted(t *testing.T) {
	v := Parse(`{}`, FailClosed())

	assert.Equal(t, 1, v.Score)
	assert.NotNil(t, v.Metrics)
	assert.Empty(t, v.Metrics)
	assert.Equal(t, "", v.Critique)
	assert.NotNil(t, v.Violations)
	assert.Empty(t, v.Violations)
}

func TestParse_ViolationsShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Violation
	}{
		{"object instead of list", `{"score": 5, "violations": {"quote": "a"}}`, []Violation{}},
		{"string instead of list", `{"score": 5, "violations": "none"}`, []Violation{}},
		{"null", `{"score": 5, "violations": null}`, []Violation{}},
		{
			name: "non-mapping elements dropped",
			raw:  `{"score": 3, "violations": ["loose", 7, null, {"quote": "A", "fix": "B"}, ["x"]]}`,
			want: []Violation{{Quote: "A", Fix: "B"}},
		},
		{
			name: "non-string fields become empty",
			raw:  `{"score": 3, "violations": [{"quote": 12, "reason": ["r"], "fix": " ok "}]}`,
			want: []Violation{{Quote: "", Reason: "", Fix: "ok"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Parse(tt.raw, FailClosed())
			assert.Equal(t, tt.want, v.Violations)
			assert.NotEqual(t, FailClosedCritique, v.Critique)
		})
	}
}

func TestParse_ScoreCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"score": 3}`, 3},
		{`{"score": 4.9}`, 4},
		{`{"score": "5"}`, 5},
		{`{"score": " 2 "}`, 2},
		{`{"score": 5.0}`, 5},
		{`{"score": 0}`, 1},
		{`{"score": -3}`, 1},
		{`{"score": 9}`, 1},
		{`{"score": 10}`, 1},
		{`{"score": 1e9}`, 1},
		{`{"score": 5.5}`, 1},
		{`{"score": "7"}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw, FailClosed()).Score)
		})
	}
}

func TestParse_OutOfRangeScoreFailsClosed(t *testing.T) {
	for _, raw := range []string{
		`{"score": 9, "critique": "wonderful", "violations": []}`,
		`{"score": 0, "critique": "awful"}`,
		`{"score": "6.2", "critique": "great"}`,
	} {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, FailClosed(), Parse(raw, FailClosed()))
		})
	}
}
