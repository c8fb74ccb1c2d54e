package localsite

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/toothbrush/confluence-mirror/confluence"
)

func TestDeriveDownloadedFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"/download/attachments/524291/peak.jpeg?version=1&modificationDate=1459521827579&api=v2",
			"524291_attachments_peak.jpeg"},
		{"/download/thumbnails/524291/Harvey.jpg?version=1&modificationDate=1459521827579&api=v2",
			"524291_thumbnails_Harvey.jpg"},
		{"/rest/documentConversion/latest/conversion/thumbnail/524291/1",
			"generated_preview_524291.jpg"},
		// no query string to strip
		{"/download/attachments/98306/report.pdf", "98306_attachments_report.pdf"},
		// refs we can't make sense of
		{"/download/short", ""},
		{"https://elsewhere.example.com/some/other/thing.png", ""},
		{"", ""},
	}

	for _, tc := range tests {
		if got := DeriveDownloadedFileName(tc.url); got != tc.want {
			t.Errorf("DeriveDownloadedFileName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestIsFileFormat(t *testing.T) {
	formats := []string{"gif", "jpeg", "jpg", "png"}

	tests := []struct {
		name string
		want bool
	}{
		{"524291_attachments_peak.jpeg", true},
		{"524291_attachments_PEAK.JPG", true},
		{"98306_attachments_report.pdf", false},
		{"no_extension", false},
	}

	for _, tc := range tests {
		if got := isFileFormat(tc.name, formats); got != tc.want {
			t.Errorf("isFileFormat(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHasSkippedExtension(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/download/attachments/1/movie.mp4?version=1", true},
		{"/download/attachments/1/photo.JPG?version=1", true},
		{"/download/attachments/1/report.pdf?version=1.mp4", false}, // extension lives in the path, not the query
		{"/download/attachments/1/report.pdf", false},
	}

	for _, tc := range tests {
		if got := hasSkippedExtension(tc.url, DefaultSkipExtensions); got != tc.want {
			t.Errorf("hasSkippedExtension(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

// testWalker wires a walker to a stub server and a temp download folder.
func testWalker(t *testing.T, handler http.Handler) *spaceWalker {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := confluence.NewAPI(srv.URL, "user", "tok")
	if err != nil {
		t.Fatalf("NewAPI: %v", err)
	}
	api.Client = srv.Client()

	spaceFolder := t.TempDir()
	downloadFolder := filepath.Join(spaceFolder, "attachments")
	if err := os.MkdirAll(downloadFolder, 0750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	exporter := &SpacesExporter{
		API:    api,
		Logger: log.New(io.Discard, "", 0),
	}
	exporter.applyDefaults()

	return exporter.newSpaceWalker(spaceFolder, downloadFolder)
}

func TestDownloadFileSkipsExisting(t *testing.T) {
	requested := 0
	w := testWalker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requested++
		fmt.Fprint(rw, "payload")
	}))

	existing := filepath.Join(w.downloadFolder, "already_there.bin")
	if err := os.WriteFile(existing, []byte("old contents"), 0640); err != nil {
		t.Fatal(err)
	}

	if err := w.downloadFile(context.Background(), "/download/attachments/1/x", "already_there.bin", 0); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	if requested != 0 {
		t.Errorf("made %d requests for an already-downloaded file, want 0", requested)
	}

	raw, _ := os.ReadFile(existing)
	if string(raw) != "old contents" {
		t.Errorf("existing file was overwritten: %q", raw)
	}
}

func TestDownloadFileRemovesFailedDownload(t *testing.T) {
	w := testWalker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.NotFound(rw, r)
	}))

	err := w.downloadFile(context.Background(), "/download/attachments/1/gone.pdf", "gone.pdf", 0)
	if err == nil {
		t.Fatal("expected an error for a 404 download")
	}

	if _, statErr := os.Stat(filepath.Join(w.downloadFolder, "gone.pdf")); !os.IsNotExist(statErr) {
		t.Errorf("failed download left a file behind; a rerun would wrongly skip it")
	}
}

func TestDownloadAttachments(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	record := func(path string) {
		mu.Lock()
		seen[path]++
		mu.Unlock()
	}

	w := testWalker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		record(r.URL.Path)
		fmt.Fprint(rw, "bytes for "+r.URL.Path)
	}))

	attachments := []confluence.Attachment{
		attachment("att524291", "/download/attachments/524291/peak.pdf?version=1&api=v2"),
		attachment("att524292", "/download/attachments/524292/movie.mp4?version=1"), // skip-listed
	}

	exports, err := w.downloadAttachments(context.Background(), attachments, 0)
	if err != nil {
		t.Fatalf("downloadAttachments: %v", err)
	}

	if len(exports) != 1 {
		t.Fatalf("exports = %+v, want just the pdf (mp4 is skip-listed)", exports)
	}
	if exports[0].FileID != "524291" || exports[0].FileName != "524291_attachments_peak.pdf" {
		t.Errorf("export = %+v", exports[0])
	}

	// payload, plus the generated preview for a pdf; no thumbnail for non-images
	wantPaths := []string{
		"/download/attachments/524291/peak.pdf",
		"/rest/documentConversion/latest/conversion/thumbnail/524291/1",
	}
	var gotPaths []string
	for path := range seen {
		gotPaths = append(gotPaths, path)
	}
	sort.Strings(gotPaths)
	sort.Strings(wantPaths)
	if len(gotPaths) != len(wantPaths) {
		t.Fatalf("requested %v, want %v", gotPaths, wantPaths)
	}
	for i := range wantPaths {
		if gotPaths[i] != wantPaths[i] {
			t.Errorf("requested %v, want %v", gotPaths, wantPaths)
			break
		}
	}

	for _, fileName := range []string{"524291_attachments_peak.pdf", "generated_preview_524291.jpg"} {
		if _, err := os.Stat(filepath.Join(w.downloadFolder, fileName)); err != nil {
			t.Errorf("expected %s on disk: %v", fileName, err)
		}
	}
}

func TestDownloadAttachmentsFetchesImageThumbnail(t *testing.T) {
	w := testWalker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, "bytes")
	}))

	// .bmp isn't skip-listed, and pretend it's a thumbnailable format
	w.thumbnailFormats = []string{"bmp"}
	w.previewFormats = nil

	exports, err := w.downloadAttachments(context.Background(), []confluence.Attachment{
		attachment("att7", "/download/attachments/7/chart.bmp?version=2"),
	}, 0)
	if err != nil {
		t.Fatalf("downloadAttachments: %v", err)
	}
	if len(exports) != 1 {
		t.Fatalf("exports = %+v", exports)
	}

	for _, fileName := range []string{"7_attachments_chart.bmp", "7_thumbnails_chart.bmp"} {
		if _, err := os.Stat(filepath.Join(w.downloadFolder, fileName)); err != nil {
			t.Errorf("expected %s on disk: %v", fileName, err)
		}
	}
}

func TestDownloadAttachmentsKeepsEntryWhenPayloadFails(t *testing.T) {
	w := testWalker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "boom", http.StatusInternalServerError)
	}))
	w.previewFormats = nil

	exports, err := w.downloadAttachments(context.Background(), []confluence.Attachment{
		attachment("att9", "/download/attachments/9/notes.txt?version=1"),
	}, 0)
	if err != nil {
		t.Fatalf("downloadAttachments: %v", err)
	}

	// The listing entry survives so the page's attachment index still shows what
	// exists remotely, even though this run couldn't fetch it.
	if len(exports) != 1 || exports[0].FileName != "9_attachments_notes.txt" {
		t.Errorf("exports = %+v, want the failed payload's entry kept", exports)
	}
	if w.exporter.summary.Errors == 0 {
		t.Errorf("a failed payload download should be counted as an error")
	}
}

func attachment(id, downloadRef string) confluence.Attachment {
	var a confluence.Attachment
	a.ID = id
	a.Links.Download = downloadRef
	return a
}
