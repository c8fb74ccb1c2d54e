package localsite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderHTMLPage(t *testing.T) {
	template := "<title>{% title %}</title><head>{% additional_headers %}</head><body>{% content %}</body>"

	got := RenderHTMLPage(template, "Team Plan", "<p>hello</p>")
	want := "<title>Team Plan</title><head></head><body><p>hello</p></body>"
	if got != want {
		t.Errorf("RenderHTMLPage = %q, want %q", got, want)
	}
}

func TestRenderHTMLPagePlaceholderSpelling(t *testing.T) {
	// Placeholders match case-insensitively, whitespace or not.
	template := "{%title%} {% TITLE %} {%  Title  %}"

	if got := RenderHTMLPage(template, "x", ""); got != "x x x" {
		t.Errorf("RenderHTMLPage = %q, want all spellings replaced", got)
	}
}

func TestRenderHTMLPageAdditionalHeaders(t *testing.T) {
	got := RenderHTMLPage("[{% additional_headers %}]", "t", "c",
		`<meta http-equiv="refresh" content="0; url=x.html" />`,
		`<meta name="robots" content="noindex" />`)

	want := "[<meta http-equiv=\"refresh\" content=\"0; url=x.html\" />\n\t<meta name=\"robots\" content=\"noindex\" />]"
	if got != want {
		t.Errorf("RenderHTMLPage = %q, want headers joined with newline+tab", got)
	}
}

func TestRenderHTMLPageLiteralReplacement(t *testing.T) {
	// Regex replacement syntax in page bodies must not expand.
	got := RenderHTMLPage("{% content %}", "t", `cost is $1 and path is C:\temp`)
	if got != `cost is $1 and path is C:\temp` {
		t.Errorf("RenderHTMLPage = %q, replacement has to be literal", got)
	}
}

func TestLoadTemplate(t *testing.T) {
	fallback, err := LoadTemplate("")
	if err != nil {
		t.Fatalf("LoadTemplate(\"\"): %v", err)
	}
	if fallback != DefaultTemplate {
		t.Errorf("empty path should hand back the built-in template")
	}
	for _, placeholder := range []string{"{% title %}", "{% content %}", "{% additional_headers %}"} {
		if !strings.Contains(DefaultTemplate, placeholder) {
			t.Errorf("built-in template is missing %s", placeholder)
		}
	}

	custom := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(custom, []byte("<main>{% content %}</main>"), 0640); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTemplate(custom)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if got != "<main>{% content %}</main>" {
		t.Errorf("LoadTemplate = %q", got)
	}

	if _, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected an error for a missing template file")
	}
}
