package localsite

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/toothbrush/confluence-mirror/confluence"
)

// Generated document previews live under this path on the remote instance.
const previewPathMarker = "/rest/documentConversion/latest/conversion/thumbnail/"

// Payload formats we deliberately leave on the server: big media that the instance
// serves fine on its own.  Skipped attachments get no local file and no entry in the
// page's attachment list.
var DefaultSkipExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".mp4", ".mov"}

// DeriveDownloadedFileName flattens a download ref into the local file name its
// payload is stored under:
//
//	/download/attachments/524291/peak.jpeg?version=1&modificationDate=1459521827579&api=v2
//	    => 524291_attachments_peak.jpeg
//	/download/thumbnails/524291/Harvey.jpg?version=1&modificationDate=1459521827579&api=v2
//	    => 524291_thumbnails_Harvey.jpg
//	/rest/documentConversion/latest/conversion/thumbnail/524291/1
//	    => generated_preview_524291.jpg
//
// A ref it can't make sense of derives to "".
func DeriveDownloadedFileName(downloadURL string) string {
	switch {
	case strings.Contains(downloadURL, "/download/"):
		parts := strings.Split(downloadURL, "/")
		if len(parts) < 5 {
			return ""
		}
		fileType := parts[2]
		pageID := parts[3]

		fileName := parts[4]
		if i := strings.LastIndex(fileName, "?"); i >= 0 {
			fileName = fileName[:i]
		}

		return fmt.Sprintf("%s_%s_%s", pageID, fileType, fileName)

	case strings.Contains(downloadURL, previewPathMarker):
		rest := downloadURL[strings.Index(downloadURL, previewPathMarker)+len(previewPathMarker):]
		fileID, _, _ := strings.Cut(rest, "/")
		if fileID == "" {
			return ""
		}
		return fmt.Sprintf("generated_preview_%s.jpg", fileID)

	default:
		return ""
	}
}

// decodeURL undoes percent-encoding; refs that aren't valid encodings come back
// unchanged.
func decodeURL(ref string) string {
	decoded, err := url.PathUnescape(ref)
	if err != nil {
		return ref
	}
	return decoded
}

// isFileFormat reports whether the name's extension (whatever follows the last dot)
// is one of formats.  Names without a dot never match.
func isFileFormat(fileName string, formats []string) bool {
	i := strings.LastIndex(fileName, ".")
	if i < 0 {
		return false
	}

	extension := strings.ToLower(fileName[i+1:])
	for _, format := range formats {
		if extension == format {
			return true
		}
	}
	return false
}

// hasSkippedExtension checks the ref's path (query string excluded) against the skip
// list.
func hasSkippedExtension(downloadURL string, skipExtensions []string) bool {
	path := downloadURL
	if u, err := url.Parse(downloadURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)

	for _, extension := range skipExtensions {
		if strings.HasSuffix(path, extension) {
			return true
		}
	}
	return false
}

// downloadAttachments mirrors one page's attachments into the space's download
// folder.  Names are assigned up front in listing order; the payloads themselves are
// fetched concurrently.  A failed payload download is logged but keeps its entry, so
// the page's attachment list always reflects the full remote listing.
func (w *spaceWalker) downloadAttachments(ctx context.Context, attachments []confluence.Attachment, depth int) ([]AttachmentExport, error) {
	exports := make([]AttachmentExport, 0, len(attachments))

	g := new(errgroup.Group)
	g.SetLimit(w.workers)

	for _, attachment := range attachments {
		downloadURL := attachment.Links.Download
		if downloadURL == "" {
			w.logf(depth+1, "WARNING: attachment %s has no download link", attachment.ID)
			continue
		}
		if hasSkippedExtension(downloadURL, w.skipExtensions) {
			continue
		}

		attachmentID := strings.TrimPrefix(attachment.ID, "att")
		cleanURL := decodeURL(downloadURL)

		fileName := DeriveDownloadedFileName(cleanURL)
		if fileName == "" {
			w.logf(depth+1, "WARNING: couldn't derive a local name for %s", downloadURL)
			continue
		}
		fileName = w.attachmentNames.AssignFile(fileName, "")

		exports = append(exports, AttachmentExport{FileID: attachmentID, FileName: fileName})

		w.queueAttachmentDownloads(ctx, g, downloadURL, cleanURL, fileName, attachmentID, depth)
	}

	if err := g.Wait(); err != nil {
		return exports, err
	}

	return exports, nil
}

// queueAttachmentDownloads schedules the payload download plus the opportunistic
// extras: the pre-rendered thumbnail for image formats and the generated preview for
// document formats.  The extras are best-effort, many attachments simply don't have
// them and the server answers 404.
func (w *spaceWalker) queueAttachmentDownloads(ctx context.Context, g *errgroup.Group, downloadURL, cleanURL, fileName, attachmentID string, depth int) {
	g.Go(func() error {
		if err := w.downloadFile(ctx, downloadURL, fileName, depth); err != nil {
			if canceled(err) {
				return err
			}
			w.logf(depth+2, "ERROR: %v", err)
			w.exporter.addError()
		}
		return nil
	})

	thumbnailURL := strings.Replace(cleanURL, "/attachments/", "/thumbnails/", 1)
	thumbnailName := DeriveDownloadedFileName(thumbnailURL)
	if thumbnailName != "" && isFileFormat(thumbnailName, w.thumbnailFormats) {
		// TODO: Confluence renders thumbnails as PNG but keeps the original
		// file extension, so these land on disk with a lying suffix.
		name := w.attachmentNames.AssignFile(thumbnailName, "")
		g.Go(func() error {
			if err := w.downloadFile(ctx, thumbnailURL, name, depth); err != nil {
				if canceled(err) {
					return err
				}
				w.logf(depth+2, "WARNING: %v", err)
			}
			return nil
		})
	}

	if isFileFormat(fileName, w.previewFormats) {
		previewURL := fmt.Sprintf("%s%s/1", previewPathMarker, attachmentID)
		previewName := w.attachmentNames.AssignFile(DeriveDownloadedFileName(previewURL), "")
		g.Go(func() error {
			if err := w.downloadFile(ctx, previewURL, previewName, depth); err != nil {
				if canceled(err) {
					return err
				}
				w.logf(depth+2, "WARNING: %v", err)
			}
			return nil
		})
	}
}

// downloadFile streams one ref into the download folder.  Files that already exist
// are skipped so an interrupted export can resume without refetching everything; a
// failed download is removed again to keep that resume logic honest.
func (w *spaceWalker) downloadFile(ctx context.Context, ref string, fileName string, depth int) error {
	destination := filepath.Join(w.downloadFolder, fileName)

	if _, err := os.Stat(destination); err == nil {
		return nil
	}

	w.logf(depth+1, "DOWNLOAD: %s", fileName)

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("localsite: couldn't create download file: %w", err)
	}

	if err := w.api.Download(ctx, ref, f); err != nil {
		f.Close()
		os.Remove(destination)
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("localsite: couldn't close download file: %w", err)
	}

	return nil
}
