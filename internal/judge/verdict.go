// Package judge scores text artifacts with a panel of independent model
// evaluators and folds their verdicts into a single pass/fail decision.
package judge

import "maps"

// FailClosedCritique is the critique carried by the fail-closed verdict
const FailClosedCritique = "Error: Judge failed to produce valid JSON."

// Violation is one problem an evaluator anchored to a verbatim quote
type Violation struct {
	Quote  string `json:"quote"`
	Reason string `json:"reason"`
	Fix    string `json:"fix"`
}

// Verdict is the normalized reply of a single evaluator.
// Violations is never nil.
type Verdict struct {
	Score      int            `json:"score"`
	Metrics    map[string]int `json:"metrics"`
	Critique   string         `json:"critique"`
	Violations []Violation    `json:"violations"`
}

// FailClosed returns the minimum-score verdict used whenever an
// evaluator's output cannot be trusted.
func FailClosed() Verdict {
	return Verdict{
		Score:      1,
		Metrics:    map[string]int{},
		Critique:   FailClosedCritique,
		Violations: []Violation{},
	}
}

func (v Verdict) clone() Verdict {
	out := v
	out.Metrics = maps.Clone(v.Metrics)
	if out.Metrics == nil {
		out.Metrics = map[string]int{}
	}
	out.Violations = append([]Violation{}, v.Violations...)
	return out
}

// Patch is a judge-tagged quote/fix pair ready for substitution
type Patch struct {
	Judge  string `json:"judge"`
	Quote  string `json:"quote"`
	Reason string `json:"reason"`
	Fix    string `json:"fix"`
}

// Aggregate is the outcome of one roster evaluation
type Aggregate struct {
	Pass     bool
	Average  float64
	Details  map[string]Verdict
	Patches  []Patch
	Critique string

	// FailedAxes lists axes that fell back to the fail-closed verdict, in roster order
	FailedAxes []string
}

// Score returns the score recorded for axis, or 0 if the axis was not judged
func (a *Aggregate) Score(axis string) int {
	return a.Details[axis].Score
}

// Scores returns a copy of the per-axis scores
func (a *Aggregate) Scores() map[string]int {
	out := make(map[string]int, len(a.Details))
	for name, v := range a.Details {
		out[name] = v.Score
	}
	return out
}
