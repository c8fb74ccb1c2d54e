package localsite

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/toothbrush/confluence-mirror/confluence"
)

const (
	DefaultExportFolder       = "export"
	DefaultDownloadFolderName = "attachments"
)

// Confluence pre-renders thumbnails for these image formats.
var DefaultThumbnailFormats = []string{"gif", "jpeg", "jpg", "png"}

// And generates a first-page JPG preview for these document formats.
var DefaultPreviewFormats = []string{"doc", "docx", "odp", "ods", "odt", "pdf", "ppt", "pptx", "vsd", "xls", "xlsx"}

// SpacesExporter mirrors whole spaces into a browsable local HTML tree.  Zero values
// get sensible defaults when ExportSpaces runs; only API is genuinely required.
type SpacesExporter struct {
	API *confluence.API

	// ExportFolder receives one subfolder per exported space, plus manifest.yaml.
	ExportFolder string

	// DownloadFolderName is the per-space subfolder attachment payloads land in.
	// It's part of the rewritten links, so pick it once and stick with it.
	DownloadFolderName string

	// Template is the HTML shell pages are rendered into; empty means the built-in
	// one.
	Template string

	ThumbnailFormats []string
	PreviewFormats   []string
	SkipExtensions   []string

	// Clean wipes ExportFolder before exporting.  Without it, a rerun resumes:
	// pages are rewritten but already-downloaded attachments are left alone.
	Clean bool

	// Workers caps concurrent attachment downloads per page.
	Workers int

	Logger *log.Logger

	spaceFolderNames *NameRegistry
	exportedSpaces   map[string]bool

	logMu sync.Mutex

	summaryMu sync.Mutex
	summary   RunSummary
}

// RunSummary is what one ExportSpaces run got through.
type RunSummary struct {
	Spaces      int
	Pages       int
	Attachments int
	Errors      int
}

// ExportSpaces exports the given spaces one after another and finishes by writing
// the run manifest.  Individual space failures are logged and counted rather than
// aborting the run; only cancellation and a broken export folder cut it short.
func (e *SpacesExporter) ExportSpaces(ctx context.Context, spaceKeys []string) (RunSummary, error) {
	e.applyDefaults()

	if e.Clean {
		if err := os.RemoveAll(e.ExportFolder); err != nil {
			return e.summary, fmt.Errorf("localsite: couldn't clean export folder: %w", err)
		}
	}
	if err := os.MkdirAll(e.ExportFolder, 0750); err != nil {
		return e.summary, fmt.Errorf("localsite: couldn't create export folder: %w", err)
	}

	p := mpb.New(mpb.WithWidth(64))

	bar := p.AddBar(int64(len(spaceKeys)),
		mpb.PrependDecorators(
			// display our name with one space on the right
			decor.Name("spaces:",
				decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)

	var spaceExports []SpaceExport
	for i, spaceKey := range spaceKeys {
		if err := ctx.Err(); err != nil {
			return e.summary, err
		}

		export, err := e.exportSpace(ctx, spaceKey, i+1, len(spaceKeys))
		bar.Increment()
		if err != nil {
			if canceled(err) {
				return e.summary, err
			}
			e.logf("ERROR: %v", err)
			e.addError()
			continue
		}
		if export == nil {
			// duplicate space key, already warned about
			continue
		}

		spaceExports = append(spaceExports, *export)
		e.summaryMu.Lock()
		e.summary.Spaces++
		e.summaryMu.Unlock()
	}

	// wait for our bar to complete and flush
	p.Wait()

	manifest := Manifest{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		BaseURL:     e.API.BaseURI.String(),
		Spaces:      spaceExports,
	}
	if err := WriteManifest(filepath.Join(e.ExportFolder, "manifest.yaml"), manifest); err != nil {
		return e.summary, err
	}

	return e.summary, nil
}

func (e *SpacesExporter) exportSpace(ctx context.Context, spaceKey string, ordinal, total int) (*SpaceExport, error) {
	if e.exportedSpaces[spaceKey] {
		e.logf("WARNING: space %s has been exported already, maybe you listed it twice", spaceKey)
		return nil, nil
	}
	e.exportedSpaces[spaceKey] = true

	folderName := e.spaceFolderNames.AssignFolder(spaceKey)
	spaceFolder := filepath.Join(e.ExportFolder, folderName)
	downloadFolder := filepath.Join(spaceFolder, e.DownloadFolderName)
	if err := os.MkdirAll(downloadFolder, 0750); err != nil {
		return nil, fmt.Errorf("localsite: couldn't create space folder %s: %w", spaceFolder, err)
	}

	space, err := e.API.GetSpace(ctx, confluence.GetSpaceQuery{Key: spaceKey, Expand: []string{"homepage"}})
	if err != nil {
		return nil, err
	}

	e.logf("SPACE (%d/%d): %s (%s)", ordinal, total, space.Name, spaceKey)

	// A space can have no homepage at all.  The sentinel fails the first content
	// fetch, which the walker shrugs off like any other broken subtree, leaving the
	// folder in place but empty.
	homepageID := "-1"
	if space.Homepage != nil {
		homepageID = space.Homepage.ID
	}

	walker := e.newSpaceWalker(spaceFolder, downloadFolder)

	export := &SpaceExport{Key: spaceKey, Name: space.Name, Folder: folderName}

	root, err := walker.fetchPageRecursively(ctx, homepageID, 0)
	if err != nil {
		if canceled(err) {
			return nil, err
		}
		e.logf("ERROR: %v", err)
		e.addError()
		return export, nil
	}
	export.Root = root

	indexTitle := fmt.Sprintf("Index of Space %s (%s)", space.Name, spaceKey)
	indexPath := filepath.Join(spaceFolder, "index.html")
	if err := writeHTMLFile(indexPath, indexTitle, BuildIndexHTML(root), e.Template); err != nil {
		return nil, err
	}

	return export, nil
}

func (e *SpacesExporter) newSpaceWalker(spaceFolder, downloadFolder string) *spaceWalker {
	pageNames := NewNameRegistry()

	return &spaceWalker{
		api:      e.API,
		exporter: e,
		logger:   e.Logger,

		spaceFolder:        spaceFolder,
		downloadFolder:     downloadFolder,
		downloadFolderName: e.DownloadFolderName,

		template:         e.Template,
		thumbnailFormats: e.ThumbnailFormats,
		previewFormats:   e.PreviewFormats,
		skipExtensions:   e.SkipExtensions,
		workers:          e.Workers,

		pageNames:       pageNames,
		attachmentNames: NewNameRegistry(),
		rewriter: &ReferenceRewriter{
			PageNames:          pageNames,
			DownloadFolderName: e.DownloadFolderName,
		},
	}
}

func (e *SpacesExporter) applyDefaults() {
	if e.Logger == nil {
		e.Logger = log.New(os.Stderr, "", 0)
	}
	if e.ExportFolder == "" {
		e.ExportFolder = DefaultExportFolder
	}
	if e.DownloadFolderName == "" {
		e.DownloadFolderName = DefaultDownloadFolderName
	}
	if e.Template == "" {
		e.Template = DefaultTemplate
	}
	if len(e.ThumbnailFormats) == 0 {
		e.ThumbnailFormats = DefaultThumbnailFormats
	}
	if len(e.PreviewFormats) == 0 {
		e.PreviewFormats = DefaultPreviewFormats
	}
	if e.SkipExtensions == nil {
		e.SkipExtensions = DefaultSkipExtensions
	}
	if e.Workers < 1 {
		e.Workers = 4
	}

	e.spaceFolderNames = NewNameRegistry()
	e.exportedSpaces = map[string]bool{}
	e.summary = RunSummary{}
}

func (e *SpacesExporter) logf(format string, args ...any) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	e.Logger.Printf(format, args...)
}

func (e *SpacesExporter) addPage() {
	e.summaryMu.Lock()
	e.summary.Pages++
	e.summaryMu.Unlock()
}

func (e *SpacesExporter) addAttachments(n int) {
	e.summaryMu.Lock()
	e.summary.Attachments += n
	e.summaryMu.Unlock()
}

func (e *SpacesExporter) addError() {
	e.summaryMu.Lock()
	e.summary.Errors++
	e.summaryMu.Unlock()
}
