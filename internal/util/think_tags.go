package util

import (
	"regexp"
	"strings"
)

var (
	thinkTagRegex = regexp.MustCompile(`(?i)<(think|thinking|思考)>[\s\S]*?</(think|thinking|思考)>`)
	// an opening tag with no close: the reply was cut off mid-reasoning
	openThinkTagRegex = regexp.MustCompile(`(?i)<(think|thinking|思考)>[\s\S]*$`)
)

// ContainsThinkTags checks if the response contains think/reasoning tags
func ContainsThinkTags(response string) bool {
	return thinkTagRegex.MatchString(response) || openThinkTagRegex.MatchString(response)
}

// StripThinkTags removes reasoning blocks emitted by reasoning models so that
// only the answer reaches the pipeline. An unclosed block is dropped through
// the end of the reply, so a truncated judge reply decodes as empty rather
// than as JSON quoted inside its reasoning. Text without tags is returned unchanged.
func StripThinkTags(response string) string {
	if !ContainsThinkTags(response) {
		return response
	}
	result := thinkTagRegex.ReplaceAllString(response, "")
	result = openThinkTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}
