package util

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"score": 5}`,
			want:  `{"score": 5}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"score\": 4}\n```",
			want:  `{"score": 4}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"score\": 3}\n```",
			want:  `{"score": 3}`,
		},
		{
			name:  "prose around object",
			input: "Here is my verdict: {\"score\": 2, \"metrics\": {\"x\": 1}} Hope that helps!",
			want:  `{"score": 2, "metrics": {"x": 1}}`,
		},
		{
			name:  "no braces",
			input: "  I cannot evaluate this.  ",
			want:  "I cannot evaluate this.",
		},
		{
			name:  "braces out of order",
			input: "} nope {",
			want:  "} nope {",
		},
		{
			name:  "only opening brace",
			input: `{"score": 5`,
			want:  `{"score": 5`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.input); got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
