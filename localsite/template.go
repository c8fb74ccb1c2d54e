package localsite

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultTemplate is the page shell used when no custom template is configured.
// Custom templates support the same three placeholders.
//
//go:embed default_template.html
var DefaultTemplate string

// Placeholders are matched case-insensitively and tolerate inner whitespace, so
// {% title %}, {%title%} and {% TITLE %} all work.
var (
	titlePlaceholder             = regexp.MustCompile(`(?i){%\s*title\s*%}`)
	contentPlaceholder           = regexp.MustCompile(`(?i){%\s*content\s*%}`)
	additionalHeadersPlaceholder = regexp.MustCompile(`(?i){%\s*additional_headers\s*%}`)
)

// RenderHTMLPage fills in a template's placeholders.  Replacement is literal:
// page bodies are full of $ and \ and must never be treated as expansion syntax.
func RenderHTMLPage(template string, title string, content string, additionalHeaders ...string) string {
	page := titlePlaceholder.ReplaceAllLiteralString(template, title)
	page = contentPlaceholder.ReplaceAllLiteralString(page, content)
	page = additionalHeadersPlaceholder.ReplaceAllLiteralString(page, strings.Join(additionalHeaders, "\n\t"))
	return page
}

// LoadTemplate reads a custom page template from disk, or hands back the built-in
// default when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("localsite: couldn't read HTML template: %w", err)
	}

	return string(raw), nil
}
