// Package revise repairs judged artifacts, first by verbatim quote/fix
// substitution and, when too many anchors are missing, by a model rewrite.
package revise

import (
	"fmt"
	"strings"

	"github.com/lamim/storyforge/internal/judge"
)

// PatchResult records whether one patch found its anchor text
type PatchResult struct {
	Judge   string `json:"judge"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason"`
	Quote   string `json:"quote"`
	Fix     string `json:"fix"`
}

// ApplyPatches substitutes each patch's quote with its fix, first
// occurrence only, in the order given. Every patch sees the text as left by
// the patches before it.
func ApplyPatches(text string, patches []judge.Patch) (string, []PatchResult) {
	report := make([]PatchResult, 0, len(patches))
	for _, p := range patches {
		quote := strings.TrimSpace(p.Quote)
		fix := strings.TrimSpace(p.Fix)

		var ok bool
		text, ok = applyOnce(text, quote, fix)
		report = append(report, PatchResult{
			Judge:   p.Judge,
			Applied: ok,
			Reason:  strings.TrimSpace(p.Reason),
			Quote:   quote,
			Fix:     fix,
		})
	}
	return text, report
}

func applyOnce(text, quote, fix string) (string, bool) {
	if quote == "" || !strings.Contains(text, quote) {
		return text, false
	}
	return strings.Replace(text, quote, fix, 1), true
}

// FailRate is the share of patches that did not apply; 0 for an empty report
func FailRate(report []PatchResult) float64 {
	if len(report) == 0 {
		return 0
	}
	return float64(countMissed(report)) / float64(len(report))
}

func countMissed(report []PatchResult) int {
	var n int
	for _, r := range report {
		if !r.Applied {
			n++
		}
	}
	return n
}

// renderPatchList formats patches as indented quote/fix pairs for a rewrite prompt
func renderPatchList(patches []judge.Patch, quoteLabel string) string {
	lines := make([]string, 0, len(patches))
	for _, p := range patches {
		if p.Quote == "" || p.Fix == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s\n  FIX: %s", quoteLabel, p.Quote, p.Fix))
	}
	return strings.Join(lines, "\n")
}
