package util

import "testing"

func TestStripThinkTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "think block removed",
			input: "<think>the owl should be sleepy</think>\nTitle: The Owl\n\nOnce...",
			want:  "Title: The Owl\n\nOnce...",
		},
		{
			name:  "thinking block removed",
			input: "<thinking>plan</thinking>{\"score\": 5}",
			want:  `{"score": 5}`,
		},
		{
			name:  "chinese tags removed",
			input: "<思考>想想</思考>答案",
			want:  "答案",
		},
		{
			name:  "unclosed block dropped",
			input: "<think>maybe {\"score\": 5} but wait",
			want:  "",
		},
		{
			name:  "answer before unclosed block kept",
			input: "Title: Moss\n\nA frog sat.<thinking>more ideas",
			want:  "Title: Moss\n\nA frog sat.",
		},
		{
			name:  "no tags keeps whitespace",
			input: "  plain story text\n",
			want:  "  plain story text\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinkTags(tt.input); got != tt.want {
				t.Errorf("StripThinkTags() = %q, want %q", got, tt.want)
			}
		})
	}
}
