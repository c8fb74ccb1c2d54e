package localsite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReferenceRewriter repairs the references inside a rendered page body so they
// resolve within the export tree instead of pointing back at the live instance.
//
// It shares the page NameRegistry with the tree walker: a link to a page we haven't
// visited yet claims that page's local file name early, and the walker's later visit
// gets the very same name back.
type ReferenceRewriter struct {
	PageNames          *NameRegistry
	DownloadFolderName string
}

const viewpageMarker = "/pages/viewpage.action?pageId="

// Rewrite returns the body with remote references localized.  Bodies that can't be
// parsed or serialized come back untouched alongside the error, so callers can warn
// and keep the original.  A body where nothing matched is returned byte-for-byte.
func (rw *ReferenceRewriter) Rewrite(body string) (string, error) {
	if body == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body, fmt.Errorf("localsite: couldn't parse page body: %w", err)
	}

	modified := rw.rewritePageLinks(doc)
	modified += rw.rewritePageIDLinks(doc)
	modified += rw.rewriteAttachmentLinks(doc)
	modified += rw.rewriteImageLinks(doc)

	if modified == 0 {
		// Nothing changed; hand back the exact input rather than a re-serialization
		// of it.
		return body, nil
	}

	rewritten, err := doc.Find("body").Html()
	if err != nil {
		return body, fmt.Errorf("localsite: couldn't serialize page body: %w", err)
	}

	return rewritten, nil
}

// rewritePageLinks localizes the usual pretty links, /display/<space>/<title>.
// Links carrying a CSS class are special things like create-page stubs or external
// link decorations, those stay as they are.
func (rw *ReferenceRewriter) rewritePageLinks(doc *goquery.Document) int {
	modified := 0

	doc.Find(`a[href*="/display/"]`).Each(func(_ int, link *goquery.Selection) {
		if hasCSSClass(link) {
			return
		}

		href, _ := link.Attr("href")
		title, ok := pageTitleFromDisplayURL(href)
		if !ok {
			return
		}

		offlineLink := rw.PageNames.AssignFile(title, "html")
		link.SetAttr("href", encodeFileURL(offlineLink))
		modified++
	})

	return modified
}

// rewritePageIDLinks localizes the other link shape, /pages/viewpage.action?pageId=N.
// We can't know the target's title from here, so these point at the <pageid>.html
// forwarder the walker writes next to every exported page.
func (rw *ReferenceRewriter) rewritePageIDLinks(doc *goquery.Document) int {
	modified := 0

	doc.Find(`a[href*="/pages/viewpage.action?pageId="]`).Each(func(_ int, link *goquery.Selection) {
		if hasCSSClass(link) {
			return
		}

		href, _ := link.Attr("href")
		_, pageID, found := strings.Cut(href, viewpageMarker)
		if !found || pageID == "" {
			return
		}

		offlineLink := sanitizeForFilename(pageID) + ".html"
		link.SetAttr("href", encodeFileURL(offlineLink))
		modified++
	})

	return modified
}

func (rw *ReferenceRewriter) rewriteAttachmentLinks(doc *goquery.Document) int {
	modified := 0

	doc.Find("a.confluence-embedded-file").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		fileName := DeriveDownloadedFileName(decodeURL(href))
		if fileName == "" {
			return
		}

		link.SetAttr("href", rw.DownloadFolderName+"/"+fileName)
		modified++
	})

	return modified
}

func (rw *ReferenceRewriter) rewriteImageLinks(doc *goquery.Document) int {
	modified := 0

	doc.Find(`img[src*="/download/"], img[src*="` + previewPathMarker + `"]`).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok {
			return
		}

		fileName := DeriveDownloadedFileName(decodeURL(src))
		if fileName == "" {
			return
		}

		relativePath := rw.DownloadFolderName + "/" + fileName
		img.SetAttr("src", relativePath)
		if _, hasAlt := img.Attr("alt"); !hasAlt {
			img.SetAttr("alt", relativePath)
		}
		modified++
	})

	return modified
}

// pageTitleFromDisplayURL digs the page title out of a /display/<space>/<title> href.
// Instances behind a context path (/wiki/display/...) carry the title in the fifth
// slash-separated segment, plain ones in the fourth.  Pluses encode spaces, the rest
// is percent-encoded.
func pageTitleFromDisplayURL(href string) (string, bool) {
	parts := strings.Split(href, "/")

	var title string
	switch {
	case len(parts) > 4:
		title = parts[4]
	case len(parts) > 3:
		title = parts[3]
	default:
		return "", false
	}

	title = strings.ReplaceAll(title, "+", " ")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}

	return title, true
}

func hasCSSClass(s *goquery.Selection) bool {
	class, ok := s.Attr("class")
	return ok && strings.TrimSpace(class) != ""
}
