package orchestrator

import (
	"regexp"
	"strings"
)

const defaultTitle = "My Story"

var titleRe = regexp.MustCompile(`(?s)^Title:\s*(.+?)\n\s*\n(.*)`)

// SplitTitle separates a "Title: ..." header from the story body. Without
// the header the first line is the title; a one-line story is its own body.
func SplitTitle(story string) (title, body string) {
	if m := titleRe.FindStringSubmatch(story); m != nil {
		title = strings.TrimSpace(m[1])
		body = m[2]
	} else {
		lines := strings.Split(story, "\n")
		title = lines[0]
		if len(lines) > 1 {
			body = strings.Join(lines[1:], "\n")
		} else {
			body = story
		}
	}

	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	return title, body
}
