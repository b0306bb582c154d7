package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const (
	// MaxRequestLength is the maximum allowed length for a story request
	MaxRequestLength = 1000

	// MaxModelNameLength is the maximum allowed length for model names
	MaxModelNameLength = 100

	// MaxTemplateSize is the maximum allowed size for template content
	MaxTemplateSize = 50 * 1024 // 50KB
)

// ValidateInputs performs additional validation on user-controllable fields
func (c *Config) ValidateInputs() error {
	// Validate model configurations
	for name, mc := range c.Models {
		if err := validateModelName(mc.ModelName, name); err != nil {
			return err
		}
		if err := validateBaseURL(mc.BaseURL, name); err != nil {
			return err
		}
	}

	// Validate the custom S3 endpoint
	if c.Storage.S3Endpoint != "" {
		if err := validateBaseURL(c.Storage.S3Endpoint, "storage.s3_endpoint"); err != nil {
			return err
		}
	}

	// Validate template sizes
	for _, tmpl := range c.PromptTemplates.named() {
		if len(tmpl.value) > MaxTemplateSize {
			return fmt.Errorf("template '%s' exceeds maximum size of %d bytes (got %d)",
				tmpl.name, MaxTemplateSize, len(tmpl.value))
		}
	}

	return nil
}

// ValidateRequest checks a story request before it enters the pipeline
func ValidateRequest(request string) error {
	// Check for empty input
	if strings.TrimSpace(request) == "" {
		return fmt.Errorf("story request is empty")
	}
	// Check length
	if len(request) > MaxRequestLength {
		return fmt.Errorf("story request exceeds maximum length of %d characters (got %d)",
			MaxRequestLength, len(request))
	}
	// Check for control characters (except newlines and tabs)
	if containsControlChars(request) {
		return fmt.Errorf("story request contains invalid control characters")
	}
	return nil
}

func validateModelName(modelName, configKey string) error {
	// Check length
	if len(modelName) > MaxModelNameLength {
		return fmt.Errorf("model '%s' name exceeds maximum length of %d (got %d)",
			configKey, MaxModelNameLength, len(modelName))
	}
	// Check for control characters
	if containsControlChars(modelName) {
		return fmt.Errorf("model '%s' name contains invalid control characters", configKey)
	}
	return nil
}

func validateBaseURL(baseURL, configKey string) error {
	// Parse URL
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("'%s' has invalid url: %w", configKey, err)
	}
	// Check scheme
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("'%s' url must use http or https scheme (got %s)", configKey, u.Scheme)
	}
	// Check host is present
	if u.Host == "" {
		return fmt.Errorf("'%s' url must have a host", configKey)
	}
	return nil
}

// containsControlChars reports control characters other than newline, tab and carriage return
func containsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
