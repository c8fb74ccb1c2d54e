package localsite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/toothbrush/confluence-mirror/confluence"
)

// The body written into each <pageid>.html forwarder, for browsers that ignore the
// meta refresh header.
const forwardMessageHTML = `<a href="%s">If you are not automatically forwarded to %s, please click here!</a>`

// The remote service promises a tree, but we'd rather bail than loop forever if it
// ever hands us a cycle.
const maxPageDepth = 50

// spaceWalker carries the per-space state of one export: the two name registries,
// the folders everything lands in, and the rewriter bound to this space's pages.
type spaceWalker struct {
	api      *confluence.API
	exporter *SpacesExporter
	logger   *log.Logger

	spaceFolder        string // <export folder>/<space folder name>
	downloadFolder     string // <space folder>/<download folder name>
	downloadFolderName string

	template         string
	thumbnailFormats []string
	previewFormats   []string
	skipExtensions   []string
	workers          int

	pageNames       *NameRegistry
	attachmentNames *NameRegistry
	rewriter        *ReferenceRewriter
}

// fetchPageRecursively exports one page and then its children, depth first.  The
// returned tree feeds the space index; a nil error means this page and every child
// that didn't individually fail are on disk.
func (w *spaceWalker) fetchPageRecursively(ctx context.Context, pageID string, depth int) (*PageExport, error) {
	if depth > maxPageDepth {
		return nil, fmt.Errorf("localsite: exceeded maximum page depth at %s", pageID)
	}

	content, err := w.api.GetContentByID(ctx, confluence.GetContentByIDQuery{
		ID:     pageID,
		Expand: []string{"children.page", "children.attachment", "body.view.value"},
	})
	if err != nil {
		return nil, err
	}

	pageTitle := content.Title
	w.logf(depth+1, "PAGE: %s (%s)", pageTitle, pageID)

	fileName := w.pageNames.AssignFile(pageTitle, "html")
	export := &PageExport{ID: pageID, Title: pageTitle, FileName: fileName}

	// Attachments come first so the body we write below links to files that exist.
	attachments, err := w.api.ListAllChildAttachments(ctx, pageID)
	if err != nil {
		return nil, err
	}
	export.Attachments, err = w.downloadAttachments(ctx, attachments, depth)
	if err != nil {
		return nil, err
	}
	w.exporter.addAttachments(len(export.Attachments))

	body := ""
	if content.Body.View != nil {
		body = content.Body.View.Value
	}
	rewritten, err := w.rewriter.Rewrite(body)
	if err != nil {
		w.logf(depth+1, "WARNING: %v; keeping this page's body as-is", err)
	}

	pageContent := rewritten + AttachmentIndexHTML(w.downloadFolderName, export.Attachments)
	if err := writeHTMLFile(filepath.Join(w.spaceFolder, fileName), pageTitle, pageContent, w.template); err != nil {
		return nil, err
	}
	if err := w.writeForwarder(pageID, pageTitle, fileName); err != nil {
		return nil, err
	}

	w.exporter.addPage()

	childPages, err := w.api.ListAllChildPages(ctx, pageID)
	if err != nil {
		return nil, err
	}
	for _, childPage := range childPages {
		child, err := w.fetchPageRecursively(ctx, childPage.ID, depth+1)
		if err != nil {
			if canceled(err) {
				return nil, err
			}
			// One broken subtree shouldn't take the rest of the space with it.
			w.logf(depth+1, "ERROR: %v", err)
			w.exporter.addError()
			continue
		}
		export.ChildPages = append(export.ChildPages, *child)
	}

	return export, nil
}

// writeForwarder drops a <pageid>.html next to the page so that rewritten
// pageId-style links (and curious humans) land on the real file.
func (w *spaceWalker) writeForwarder(pageID string, pageTitle string, fileName string) error {
	target := encodeFileURL(sanitizeForFilename(fileName))

	title := fmt.Sprintf("Forward to page %s", pageTitle)
	content := fmt.Sprintf(forwardMessageHTML, target, pageTitle)
	refreshHeader := fmt.Sprintf(`<meta http-equiv="refresh" content="0; url=%s" />`, target)

	path := filepath.Join(w.spaceFolder, pageID+".html")
	return writeHTMLFile(path, title, content, w.template, refreshHeader)
}

func (w *spaceWalker) logf(depth int, format string, args ...any) {
	w.exporter.logMu.Lock()
	defer w.exporter.logMu.Unlock()
	w.logger.Print(strings.Repeat("   ", depth) + fmt.Sprintf(format, args...))
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
