package localsite

import (
	"fmt"
	"strings"
)

// BuildIndexHTML renders the navigation tree for a space's index.html: a link to the
// root page, then nested lists mirroring the page hierarchy in listing order.
func BuildIndexHTML(root *PageExport) string {
	if root == nil {
		return ""
	}

	var b strings.Builder
	writeIndexEntry(&b, root)
	return b.String()
}

func writeIndexEntry(b *strings.Builder, page *PageExport) {
	fmt.Fprintf(b, "<a href=%q>%s</a>", encodeFileURL(page.FileName), page.Title)

	if len(page.ChildPages) == 0 {
		return
	}

	b.WriteString("<ul>\n")
	for i := range page.ChildPages {
		b.WriteString("\t<li>")
		writeIndexEntry(b, &page.ChildPages[i])
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
}

// AttachmentIndexHTML renders the attachment list appended to every exported page.
// The heading is always present; the list only when the page actually has
// attachments.
func AttachmentIndexHTML(downloadFolderName string, attachments []AttachmentExport) string {
	var b strings.Builder
	b.WriteString("\n\n<h2>Attachments</h2>")

	if len(attachments) > 0 {
		b.WriteString("<ul>\n")
		for _, attachment := range attachments {
			href := encodeFileURL(downloadFolderName + "/" + attachment.FileName)
			fmt.Fprintf(&b, "\t<li><a href=%q>%s</a></li>\n", href, attachment.FileName)
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}
