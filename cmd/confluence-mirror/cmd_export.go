/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-mirror/confluence"
	"github.com/toothbrush/confluence-mirror/internal/termfmt"
	"github.com/toothbrush/confluence-mirror/localsite"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

var exportUsage = strings.TrimSpace(`
Walk the given spaces page by page and write them out as a local HTML tree, one folder per space,
with an index.html per space and all attachments alongside.  Rerunning resumes: pages are always
rewritten, but attachments that already exist on disk are not fetched again.
`)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export spaces as a local HTML tree",
	Long:  exportUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugLog("  Spaces: %v\n", Spaces)
		debugLog("  AllSpaces: %v\n", AllSpaces)
		debugLog("  Clean: %v\n", Clean)
		return runExport(cmd)
	},
}

var (
	Spaces          []string
	AllSpaces       bool
	Clean           bool
	WithVCR         bool
	SkipTLSVerify   bool
	IncludePersonal bool

	ExportFolder   string
	DownloadFolder string
	TemplatePath   string

	ThumbnailFormats []string
	PreviewFormats   []string
	SkipExtensions   []string

	Workers int
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVar(&Spaces, "spaces", []string{}, "keys of the spaces to export")
	exportCmd.Flags().BoolVar(&AllSpaces, "all-spaces", false, "export every space instead of naming them with --spaces")
	exportCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "with --all-spaces, export individuals' personal spaces too")
	exportCmd.Flags().BoolVar(&Clean, "clean", false, "wipe the export folder first instead of resuming")
	exportCmd.Flags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to cache responses")
	exportCmd.Flags().BoolVar(&SkipTLSVerify, "skip-tls-verify", false, "don't verify the wiki's TLS certificate")
	exportCmd.Flags().StringVar(&ExportFolder, "export-folder", localsite.DefaultExportFolder, "folder to write the HTML tree into")
	exportCmd.Flags().StringVar(&DownloadFolder, "download-folder", localsite.DefaultDownloadFolderName, "per-space subfolder name for attachment downloads")
	exportCmd.Flags().StringVar(&TemplatePath, "template", "", "HTML template file to render pages into (default: built-in)")
	exportCmd.Flags().StringSliceVar(&ThumbnailFormats, "thumbnail-formats", localsite.DefaultThumbnailFormats, "image formats to fetch thumbnails for")
	exportCmd.Flags().StringSliceVar(&PreviewFormats, "preview-formats", localsite.DefaultPreviewFormats, "document formats to fetch generated previews for")
	exportCmd.Flags().StringSliceVar(&SkipExtensions, "skip-extensions", localsite.DefaultSkipExtensions, "attachment extensions to skip entirely")
	exportCmd.Flags().IntVar(&Workers, "workers", 4, "concurrent attachment downloads per page")
}

func runExport(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := resolveAuthToken()
	if err != nil {
		return err
	}

	api, err := confluence.NewAPI(BaseURL, AuthUsername, token)
	if err != nil {
		return fmt.Errorf("export: couldn't instantiate Confluence API: %w", err)
	}

	client, err := confluence.NewHTTPClient(confluence.ClientOptions{
		SkipTLSVerify: SkipTLSVerify,
		Proxies:       ParsedConfig.Proxies,
	})
	if err != nil {
		return fmt.Errorf("export: couldn't set up HTTP client: %w", err)
	}
	api.Client = client
	api.Headers = ParsedConfig.HTTPHeaders

	if WithVCR {
		// set up VCR recordings.
		opts := &recorder.Options{
			CassetteName:       "fixtures/confluence-mirror",
			Mode:               recorder.ModeReplayWithNewEpisodes,
			SkipRequestLatency: true,
			RealTransport:      api.Client.Transport,
		}
		r, err := recorder.NewWithOptions(opts)
		if err != nil {
			return fmt.Errorf("export: couldn't set up go-vcr recording: %w", err)
		}

		defer r.Stop() // Make sure recorder is stopped once done with it

		// Add a hook which removes Authorization headers from all requests
		hook := func(i *cassette.Interaction) error {
			delete(i.Request.Headers, "Authorization")
			return nil
		}
		r.AddHook(hook, recorder.AfterCaptureHook)
		r.SetReplayableInteractions(true)

		api.Client = r.GetDefaultClient()
	}

	// get current user information
	currentUser, err := api.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("export: couldn't query current user: %w", err)
	}

	fmt.Printf("Logged in to %s as '%v (%s)'...\n", BaseURL, termfmt.Bold().V(currentUser.DisplayName), currentUser.AccountID)

	spaceKeys := Spaces
	if AllSpaces {
		spacesRemote, err := api.ListAllSpaces(ctx, IncludePersonal)
		if err != nil {
			return fmt.Errorf("export: couldn't list Confluence spaces: %w", err)
		}

		spaceKeys = maps.Keys(spacesRemote)
		slices.Sort(spaceKeys)
	}
	if len(spaceKeys) == 0 {
		return fmt.Errorf("export: nothing to export, name spaces with --spaces or pass --all-spaces")
	}

	exportFolder, err := homedir.Expand(ExportFolder)
	if err != nil {
		return fmt.Errorf("export: couldn't expand homedir: %w", err)
	}
	templatePath, err := homedir.Expand(TemplatePath)
	if err != nil {
		return fmt.Errorf("export: couldn't expand homedir: %w", err)
	}

	template, err := localsite.LoadTemplate(templatePath)
	if err != nil {
		return err
	}

	exporter := localsite.SpacesExporter{
		API:                api,
		ExportFolder:       exportFolder,
		DownloadFolderName: DownloadFolder,
		Template:           template,
		ThumbnailFormats:   ThumbnailFormats,
		PreviewFormats:     PreviewFormats,
		SkipExtensions:     SkipExtensions,
		Clean:              Clean,
		Workers:            Workers,
	}

	summary, err := exporter.ExportSpaces(ctx, spaceKeys)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("\nFinished!  Exported %v spaces (%d pages, %d attachments) into %s.\n",
		termfmt.Bold().V(summary.Spaces), summary.Pages, summary.Attachments, exportFolder)
	if summary.Errors > 0 {
		fmt.Printf("%v: hit %d problems along the way, scan the log above.\n",
			termfmt.Fg(0xd8, 0x43, 0x15, termfmt.Red).V("WARNING"), summary.Errors)
	}

	return nil
}
