package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"briefdeck/internal/config"
	"briefdeck/internal/logger"
	"briefdeck/internal/store"
)

// NewConvertCmd creates the convert command that runs the whole pipeline on one document
func NewConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <briefing.docx>",
		Short: "Convert a briefing document into a PowerPoint deck",
		Long: `Convert runs a .docx briefing through the same pipeline as the web server:
the language model drafts an HTML preview, the preview is extracted into slide data
and the deck is written under the configured public directory.

Examples:
  briefdeck convert january-briefing.docx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0])
		},
	}
}

func runConvert(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("📄 Processing %s...\n", filepath.Base(path))
	preview, err := a.service.ProcessDocument(ctx, filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}
	fmt.Printf("👀 Preview: %s (%d chunk(s), %d article(s))\n",
		filepath.Join(a.sink.Dir(store.KindPreview), filepath.Base(preview.PreviewURL)),
		preview.ChunksProcessed, len(preview.Classifications))

	download, err := a.service.ConvertToPPTX(ctx, preview.PresentationID, preview.HTML)
	if err != nil {
		return fmt.Errorf("failed to build presentation: %w", err)
	}
	log.Debug("conversion finished", "presentation_id", download.PresentationID)

	fmt.Printf("📊 Presentation: %s (%d slides)\n",
		filepath.Join(a.sink.Dir(store.KindDownload), download.Filename), download.Slides)
	if download.Dropped > 0 {
		fmt.Printf("⚠️  %d item(s) did not fit and were left out\n", download.Dropped)
	}
	return nil
}
