package util

import (
	"strings"
	"sync"
	"testing"
)

func TestRenderTemplate_Basic(t *testing.T) {
	tmpl := "Story request: {{.Request}}\nPlan:\n{{.Plan}}"
	data := map[string]interface{}{
		"Request": "a sleepy owl",
		"Plan":    "1. Chosen Idea: the owl who collects yawns",
	}

	result, err := RenderTemplate(tmpl, data)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := "Story request: a sleepy owl\nPlan:\n1. Chosen Idea: the owl who collects yawns"
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestRenderTemplate_JSONBracesAreLiteral(t *testing.T) {
	tmpl := `Return {"score": <1-5>, "violations": [{"quote": ""}]}` + "\nSTORY:\n{{.Artifact}}"

	result, err := RenderTemplate(tmpl, map[string]interface{}{"Artifact": "Once upon a time."})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.HasPrefix(result, `Return {"score"`) {
		t.Errorf("JSON schema was altered: %s", result)
	}
	if !strings.HasSuffix(result, "Once upon a time.") {
		t.Errorf("Artifact missing: %s", result)
	}
}

func TestRenderTemplate_InvalidTemplate(t *testing.T) {
	_, err := RenderTemplate("Hello {{.Name", map[string]interface{}{"Name": "Alice"})
	if err == nil {
		t.Error("Expected error for invalid template, got nil")
	}
}

func TestRenderTemplate_MissingKey(t *testing.T) {
	_, err := RenderTemplate("Hello {{.Name}}", map[string]interface{}{})
	if err == nil {
		t.Error("Expected error for missing key, got nil")
	}
}

func TestRenderTemplate_ForbiddenDirectives(t *testing.T) {
	tests := []string{
		`{{define "x"}}hi{{end}}`,
		`{{template "x"}}`,
		`{{call .Fn}}`,
		`{{block "x" .}}{{end}}`,
	}

	for _, tmpl := range tests {
		t.Run(tmpl, func(t *testing.T) {
			_, err := RenderTemplate(tmpl, map[string]interface{}{})
			if err == nil || !strings.Contains(err.Error(), "forbidden directive") {
				t.Errorf("Expected forbidden directive error, got %v", err)
			}
		})
	}
}

func TestRenderTemplate_CachedConcurrentUse(t *testing.T) {
	ClearTemplateCache()
	tmpl := "Judge this: {{.Artifact}}"

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := RenderTemplate(tmpl, map[string]interface{}{"Artifact": "text"})
			if err != nil {
				errs <- err
				return
			}
			if out != "Judge this: text" {
				errs <- &mismatchError{out}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent render failed: %v", err)
	}

	if _, ok := templateCache.Load(tmpl); !ok {
		t.Error("Expected template to be cached")
	}
	ClearTemplateCache()
	if _, ok := templateCache.Load(tmpl); ok {
		t.Error("Expected cache to be cleared")
	}
}

type mismatchError struct{ got string }

func (e *mismatchError) Error() string { return "unexpected output: " + e.got }

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncate me", 8, "truncate..."},
		{"ñandú🐦bird", 6, "ñandú🐦..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TruncateString(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
