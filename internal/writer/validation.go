package writer

import (
	"fmt"
	"regexp"
	"strings"
)

// Story IDs become directory names and object keys
var storyIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateStoryID rejects IDs that could escape the output root (CWE-22)
func ValidateStoryID(id string) error {
	if id == "" {
		return fmt.Errorf("story id cannot be empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("invalid story id: contains '..' (path traversal attempt)")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid story id: must not contain path separators")
	}
	if !storyIDRegex.MatchString(id) {
		return fmt.Errorf("invalid story id format: %q", id)
	}
	return nil
}
