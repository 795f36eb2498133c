package handlers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"briefdeck/internal/classify"
	"briefdeck/internal/config"
	"briefdeck/internal/core"
	"briefdeck/internal/enforce"
	"briefdeck/internal/export"
	"briefdeck/internal/layout"
	"briefdeck/internal/logger"
	"briefdeck/internal/normalize"
)

type renderOptions struct {
	outDir string
	source string
	html   bool
	png    bool
}

// NewRenderCmd creates the render command for laying out slide JSON without a language model
func NewRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <slides.json|preview.html>",
		Short: "Render slide data into a deck without calling a language model",
		Long: `Render lays out slide descriptions and writes them as PowerPoint.

The input is either the JSON slide array a model produced or a saved preview page, in
which case slides are extracted straight from the HTML. Passing --source applies the
per-article slide budget computed from the original briefing.

Examples:
  # Render JSON slide data to ./out/presentation.pptx
  briefdeck render slides.json

  # Also write an HTML preview and PNG thumbnails
  briefdeck render slides.json --html --png --out build

  # Enforce the slide budget from the source document
  briefdeck render preview.html --source briefing.docx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "out", "Output directory")
	cmd.Flags().StringVar(&opts.source, "source", "", "Briefing document used to enforce the slide budget")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Also write presentation.html")
	cmd.Flags().BoolVar(&opts.png, "png", false, "Also write one PNG per slide")

	return cmd
}

func runRender(path string, opts renderOptions) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	output, sourceHTML := string(data), ""
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		output, sourceHTML = "", string(data)
	}

	deck, err := normalize.New(normalize.Options{Logger: log}).Normalize(output, sourceHTML)
	if err != nil {
		return fmt.Errorf("failed to read slides from %s: %w", path, err)
	}

	var classifications []core.Classification
	if opts.source != "" {
		text, err := readDocumentText(opts.source)
		if err != nil {
			return err
		}
		classifications = classify.New(classify.Options{Logger: log}).ClassifyAll(classify.SplitArticles(text))
	}

	rendered := layout.New(layoutOptions(cfg)).Render(enforce.New(log).Enforce(deck, classifications))

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", opts.outDir, err)
	}

	title := cfg.Deck.BrandName + " Monthly Briefing"
	var buf bytes.Buffer
	err = export.WritePPTX(&buf, rendered, export.PPTXOptions{
		AssetsDir:  cfg.Output.AssetsDir,
		Title:      title,
		Author:     cfg.Deck.BrandName,
		ThemeColor: cfg.Deck.BrandColor,
		Now:        time.Now,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to write presentation: %w", err)
	}
	pptxPath := filepath.Join(opts.outDir, "presentation.pptx")
	if err := os.WriteFile(pptxPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pptxPath, err)
	}
	fmt.Printf("📊 %s (%d slides)\n", pptxPath, len(rendered.Slides))

	if opts.html {
		buf.Reset()
		err := export.WriteHTML(&buf, rendered, export.HTMLOptions{
			Title:     title,
			AssetsURL: relativeAssets(opts.outDir, cfg.Output.AssetsDir),
		})
		if err != nil {
			return err
		}
		htmlPath := filepath.Join(opts.outDir, "presentation.html")
		if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", htmlPath, err)
		}
		fmt.Printf("🌐 %s\n", htmlPath)
	}

	if opts.png {
		paths, err := export.WritePNGs(filepath.Join(opts.outDir, "slides"), rendered, export.PNGOptions{
			DPI:       cfg.Deck.PNGDPI,
			AssetsDir: cfg.Output.AssetsDir,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		fmt.Printf("🖼️  %d thumbnails in %s\n", len(paths), filepath.Join(opts.outDir, "slides"))
	}

	for _, c := range rendered.Slides {
		if len(c.Dropped) > 0 {
			fmt.Printf("⚠️  slide %d dropped %d item(s): %s\n", c.Number, len(c.Dropped), strings.Join(c.Dropped, "; "))
		}
	}
	return nil
}

// relativeAssets points the HTML preview at the assets directory from outDir.
func relativeAssets(outDir, assetsDir string) string {
	rel, err := filepath.Rel(outDir, assetsDir)
	if err != nil {
		return filepath.ToSlash(assetsDir)
	}
	return filepath.ToSlash(rel)
}
