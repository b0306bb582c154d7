package judge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lamim/storyforge/internal/util"
)

const (
	minScore = 1
	maxScore = 5
)

// Parse normalizes a raw evaluator reply into a Verdict. It never fails:
// any extraction or decoding problem yields a copy of def.
func Parse(raw string, def Verdict) Verdict {
	v, err := decodeVerdict(raw)
	if err != nil {
		return def.clone()
	}
	return v
}

// decodeVerdict is Parse without the fallback, so callers can tell a
// genuine verdict from a substituted one.
func decodeVerdict(raw string) (Verdict, error) {
	dec := json.NewDecoder(strings.NewReader(util.ExtractJSONObject(raw)))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode verdict: %w", err)
	}
	if data == nil {
		return Verdict{}, errors.New("verdict is not a JSON object")
	}
	if dec.More() {
		return Verdict{}, errors.New("trailing data after verdict object")
	}

	v := Verdict{
		Score:      minScore,
		Metrics:    map[string]int{},
		Violations: []Violation{},
	}

	if rawScore, ok := data["score"]; ok {
		score, err := coerceScore(rawScore)
		if err != nil {
			return Verdict{}, err
		}
		v.Score = score
	}

	if m, ok := data["metrics"].(map[string]any); ok {
		for name, val := range m {
			if n, ok := val.(json.Number); ok {
				if i, err := n.Int64(); err == nil {
					v.Metrics[name] = int(i)
				}
			}
		}
	}

	if s, ok := data["critique"].(string); ok {
		v.Critique = s
	}

	if list, ok := data["violations"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			v.Violations = append(v.Violations, Violation{
				Quote:  stringField(m, "quote"),
				Reason: stringField(m, "reason"),
				Fix:    stringField(m, "fix"),
			})
		}
	}

	return v, nil
}

// coerceScore accepts an integer, a float (truncated) or a numeric string
// within 1..5. Anything outside the range is an error, never clamped.
func coerceScore(val any) (int, error) {
	var f float64
	switch s := val.(type) {
	case json.Number:
		if i, err := s.Int64(); err == nil {
			if i < minScore || i > maxScore {
				return 0, fmt.Errorf("score %d out of range %d..%d", i, minScore, maxScore)
			}
			return int(i), nil
		}
		parsed, err := s.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid score %q: %w", s, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid score %q: %w", s, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("score has unsupported type %T", val)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < minScore || f > maxScore {
		return 0, fmt.Errorf("score %v out of range %d..%d", f, minScore, maxScore)
	}
	return int(f), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// compactJSON is used when logging raw replies
func compactJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(util.ExtractJSONObject(raw))); err != nil {
		return util.TruncateString(raw, 200)
	}
	return util.TruncateString(buf.String(), 200)
}
