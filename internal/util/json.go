package util

import "strings"

// ExtractJSONObject pulls a JSON object out of a model reply that may be
// wrapped in markdown fences or surrounded by prose. Fence markers are
// removed, then the text from the first '{' to the last '}' is returned.
// When no ordered brace pair exists the cleaned text is returned as-is.
func ExtractJSONObject(s string) string {
	cleaned := strings.ReplaceAll(s, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}
