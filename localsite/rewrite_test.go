package localsite

import (
	"strings"
	"testing"
)

func newRewriter() *ReferenceRewriter {
	return &ReferenceRewriter{
		PageNames:          NewNameRegistry(),
		DownloadFolderName: "attachments",
	}
}

func TestRewritePageLinks(t *testing.T) {
	rw := newRewriter()

	in := `<p><a href="/display/TST/Team+Plan">the plan</a></p>`
	out, err := rw.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !strings.Contains(out, `href="Team%20Plan.html"`) {
		t.Errorf("out = %q, want the display link localized", out)
	}
}

func TestRewritePageLinksWithContextPath(t *testing.T) {
	rw := newRewriter()

	out, err := rw.Rewrite(`<a href="/wiki/display/TST/Road+Map">roadmap</a>`)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !strings.Contains(out, `href="Road%20Map.html"`) {
		t.Errorf("out = %q, want the title from the segment after the space key", out)
	}
}

func TestRewriteSharesNamesWithWalker(t *testing.T) {
	rw := newRewriter()

	out, err := rw.Rewrite(`<a href="/display/TST/Team%3A+Plan">link</a>`)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, `href="Team_%20Plan.html"`) {
		t.Errorf("out = %q", out)
	}

	// The walker later exports the actual page; it must get the very name the link
	// already points at.
	if got := rw.PageNames.AssignFile("Team: Plan", "html"); got != "Team_ Plan.html" {
		t.Errorf("walker's AssignFile = %q, want the name the rewritten link used", got)
	}
}

func TestRewriteSkipsDecoratedLinks(t *testing.T) {
	rw := newRewriter()

	in := `<a class="external-link" href="/display/TST/Somewhere">styled</a>`
	out, err := rw.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if out != in {
		t.Errorf("out = %q, want links with CSS classes left alone, byte-for-byte", out)
	}
}

func TestRewritePageIDLinks(t *testing.T) {
	rw := newRewriter()

	out, err := rw.Rewrite(`<a href="/pages/viewpage.action?pageId=524291">by id</a>`)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !strings.Contains(out, `href="524291.html"`) {
		t.Errorf("out = %q, want a link to the page's forwarder file", out)
	}
}

func TestRewriteAttachmentLinks(t *testing.T) {
	rw := newRewriter()

	in := `<a class="confluence-embedded-file" href="/download/attachments/524291/peak.jpeg?version=1&amp;api=v2">peak</a>`
	out, err := rw.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !strings.Contains(out, `href="attachments/524291_attachments_peak.jpeg"`) {
		t.Errorf("out = %q, want the download ref pointed into the download folder", out)
	}
}

func TestRewriteImages(t *testing.T) {
	rw := newRewriter()

	in := `<img src="/download/thumbnails/524291/Harvey.jpg?version=1"><img src="/rest/documentConversion/latest/conversion/thumbnail/99/1" alt="already set">`
	out, err := rw.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !strings.Contains(out, `src="attachments/524291_thumbnails_Harvey.jpg"`) {
		t.Errorf("out = %q, want thumbnail src localized", out)
	}
	if !strings.Contains(out, `alt="attachments/524291_thumbnails_Harvey.jpg"`) {
		t.Errorf("out = %q, want a missing alt filled with the local path", out)
	}
	if !strings.Contains(out, `src="attachments/generated_preview_99.jpg"`) {
		t.Errorf("out = %q, want preview src localized", out)
	}
	if !strings.Contains(out, `alt="already set"`) {
		t.Errorf("out = %q, want an existing alt left alone", out)
	}
}

func TestRewriteUntouchedBodyComesBackVerbatim(t *testing.T) {
	// Deliberately crusty markup that a parse/serialize round trip would normalize.
	in := `<P CLASS=fancy><a href="https://example.com/unrelated">x</a><br>&nbsp;</P>`

	out, err := newRewriter().Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if out != in {
		t.Errorf("out = %q, want the input byte-for-byte when nothing was rewritten", out)
	}
}

func TestRewriteEmptyBody(t *testing.T) {
	out, err := newRewriter().Rewrite("")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
}

func TestPageTitleFromDisplayURL(t *testing.T) {
	tests := []struct {
		href  string
		want  string
		valid bool
	}{
		{"/display/TST/Team+Plan", "Team Plan", true},
		{"/wiki/display/TST/Team+Plan", "Team Plan", true},
		{"/display/TST/Team%3A+Plan", "Team: Plan", true},
		{"/display", "", false},
	}

	for _, tc := range tests {
		got, ok := pageTitleFromDisplayURL(tc.href)
		if ok != tc.valid || got != tc.want {
			t.Errorf("pageTitleFromDisplayURL(%q) = %q, %v; want %q, %v", tc.href, got, ok, tc.want, tc.valid)
		}
	}
}
