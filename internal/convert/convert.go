// Package convert runs a briefing document through classification, the oracle, the layout
// engine and the exporters.
package convert

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"briefdeck/internal/classify"
	"briefdeck/internal/core"
	"briefdeck/internal/docx"
	"briefdeck/internal/enforce"
	"briefdeck/internal/export"
	"briefdeck/internal/layout"
	"briefdeck/internal/llm"
	"briefdeck/internal/logger"
	"briefdeck/internal/normalize"
	"briefdeck/internal/slides"
	"briefdeck/internal/store"
	"briefdeck/internal/textclean"
)

var (
	// ErrInvalidInput marks request problems detected before any work is done.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoOracle is returned by ProcessDocument on a Service built without an oracle.
	ErrNoOracle = errors.New("no language model configured")
)

//go:embed templates/preview.html
var defaultTemplate string

// DefaultTemplate is the preview page used when no template file is configured.
func DefaultTemplate() string {
	return defaultTemplate
}

// Config holds pipeline settings.
type Config struct {
	// ChunkTokens splits documents above this estimated size into several oracle calls.
	// 0 sends the whole document at once.
	ChunkTokens int
	// TemplateHTML is the preview page; its <style> block is passed to the oracle.
	TemplateHTML string
	AssetsDir    string
	Title        string
	Author       string
}

// DefaultConfig returns the settings used when New gets a nil config.
func DefaultConfig() *Config {
	return &Config{
		TemplateHTML: defaultTemplate,
		Title:        "Monthly Briefing",
	}
}

// Options wires a Service. Sink is required. Without an Oracle, ConvertToPPTX uses the HTML
// extractor directly and ProcessDocument fails.
type Options struct {
	Oracle     llm.Oracle
	Sink       Sink
	Recorder   Recorder      // optional
	Cache      ResponseCache // optional
	Classifier *classify.Classifier
	Normalizer *normalize.Normalizer
	Layout     layout.Options
	Prompts    llm.Prompts
	Config     *Config
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service converts documents. It is safe for concurrent use.
type Service struct {
	oracle     llm.Oracle
	sink       Sink
	recorder   Recorder
	classifier *classify.Classifier
	normalizer *normalize.Normalizer
	enforcer   *enforce.Enforcer
	engine     *layout.Engine
	prompts    llm.Prompts
	config     *Config
	log        *slog.Logger
	now        func() time.Time
}

func New(opts Options) (*Service, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	log := logger.OrDiscard(opts.Logger)

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if strings.TrimSpace(cfg.TemplateHTML) == "" {
		cfg.TemplateHTML = defaultTemplate
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(classify.Options{Logger: log})
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalize.New(normalize.Options{Logger: log})
	}
	layoutOpts := opts.Layout
	if layoutOpts.Logger == nil {
		layoutOpts.Logger = log
	}
	if layoutOpts.Now == nil {
		layoutOpts.Now = now
	}
	prompts := opts.Prompts
	if prompts.Now == nil {
		prompts.Now = now
	}

	var oracle llm.Oracle
	if opts.Oracle != nil {
		oracle = WithCache(opts.Oracle, opts.Cache, log)
	}

	return &Service{
		oracle:     oracle,
		sink:       opts.Sink,
		recorder:   opts.Recorder,
		classifier: classifier,
		normalizer: normalizer,
		enforcer:   enforce.New(log),
		engine:     layout.New(layoutOpts),
		prompts:    prompts,
		config:     cfg,
		log:        log,
		now:        now,
	}, nil
}

// Preview is the result of ProcessDocument.
type Preview struct {
	PresentationID  string                `json:"presentationId"`
	HTML            string                `json:"html"`
	OriginalContent string                `json:"originalContent"`
	ChunksProcessed int                   `json:"chunksProcessed"`
	PreviewURL      string                `json:"previewUrl"`
	Classifications []core.Classification `json:"classifications"`
}

// ProcessDocument extracts the text of a .docx upload, classifies its articles and asks the
// oracle for slide HTML. The assembled preview page is saved through the sink.
func (s *Service) ProcessDocument(ctx context.Context, name string, data []byte) (*Preview, error) {
	if s.oracle == nil {
		return nil, ErrNoOracle
	}
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		return nil, fmt.Errorf("%w: only .docx files are supported", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	text, err := docx.ExtractText(data)
	if err != nil {
		if errors.Is(err, docx.ErrNotDocx) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document has no text", ErrInvalidInput)
	}

	articles := classify.SplitArticles(text)
	classifications := s.classifier.ClassifyAll(articles)
	s.log.Info("classified articles", "document", name, "articles", len(articles))

	slidesHTML, chunks, err := s.generateSlides(ctx, text, classify.Guidance(classifications))
	if err != nil {
		return nil, err
	}
	page := AssemblePreview(s.config.TemplateHTML, slidesHTML)

	id := store.NewPresentationID(s.now())
	_, url, err := s.sink.Save(store.KindPreview, id, "html", []byte(page))
	if err != nil {
		return nil, fmt.Errorf("failed to save preview: %w", err)
	}

	if s.recorder != nil {
		if _, err := s.recorder.RecordPreview(id, name, url, classifications); err != nil {
			s.log.Warn("failed to record preview", "presentation_id", id, "error", err)
		}
	}

	return &Preview{
		PresentationID:  id,
		HTML:            page,
		OriginalContent: text,
		ChunksProcessed: chunks,
		PreviewURL:      url,
		Classifications: classifications,
	}, nil
}

func (s *Service) generateSlides(ctx context.Context, text, guidance string) (string, int, error) {
	styles := llm.TemplateStyles(s.config.TemplateHTML)

	chunks := []string{text}
	if s.config.ChunkTokens > 0 && llm.EstimateTokens(text) > s.config.ChunkTokens {
		chunks = llm.ChunkText(text, s.config.ChunkTokens)
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := s.prompts.BuildSlidesPrompt(chunk, styles, guidance)
		if i > 0 {
			prompt = s.prompts.BuildChunkPrompt(chunk, i, len(chunks), styles)
		}
		resp, err := s.oracle.Generate(ctx, llm.Request{
			Kind:        llm.KindSlides,
			Prompt:      prompt,
			MaxTokens:   llm.SlidesMaxTokens,
			Temperature: llm.Temperature(llm.SlidesTemperature),
		})
		if err != nil {
			return "", 0, fmt.Errorf("failed to generate slides for chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, llm.CleanHTMLResponse(resp))
	}
	s.log.Debug("generated slide html", "chunks", len(chunks))
	return strings.Join(parts, "\n\n"), len(chunks), nil
}

// AssemblePreview wraps slide markup in the head of the template page.
func AssemblePreview(templateHTML, slidesHTML string) string {
	head := templateHTML
	if i := strings.Index(strings.ToLower(head), "</head>"); i >= 0 {
		head = head[:i]
	} else {
		head = "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">"
	}
	return llm.RewriteAssetURLs(head) + "\n</head>\n<body>\n" + slidesHTML + "\n</body>\n</html>"
}

// Download is the result of ConvertToPPTX.
type Download struct {
	PresentationID string `json:"presentationId"`
	DownloadURL    string `json:"downloadUrl"`
	Filename       string `json:"filename"`
	Slides         int    `json:"slides"`
	Dropped        int    `json:"dropped"`
}

// ConvertToPPTX extracts slide data from preview HTML, renders it and saves the .pptx.
func (s *Service) ConvertToPPTX(ctx context.Context, presentationID, html string) (*Download, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: no HTML content provided", ErrInvalidInput)
	}
	if presentationID == "" {
		presentationID = store.NewPresentationID(s.now())
	}

	output, err := s.extract(ctx, html)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("slide extraction failed, using HTML fallback", "presentation_id", presentationID, "error", err)
	}

	deck, err := s.normalizer.Normalize(output, html)
	if err != nil {
		return nil, err
	}

	rendered := s.RenderSlides(deck, s.classifications(presentationID))

	var buf bytes.Buffer
	err = export.WritePPTX(&buf, rendered, export.PPTXOptions{
		AssetsDir: s.config.AssetsDir,
		Title:     s.config.Title,
		Author:    s.config.Author,
		Now:       s.now,
		Logger:    s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write presentation: %w", err)
	}

	_, url, err := s.sink.Save(store.KindDownload, presentationID, "pptx", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to save presentation: %w", err)
	}
	if s.recorder != nil {
		if err := s.recorder.RecordDownload(presentationID, url, len(rendered.Slides)); err != nil {
			s.log.Warn("failed to record download", "presentation_id", presentationID, "error", err)
		}
	}

	dropped := 0
	for _, c := range rendered.Slides {
		dropped += len(c.Dropped)
	}
	s.log.Info("presentation ready", "presentation_id", presentationID, "slides", len(rendered.Slides), "dropped", dropped)

	return &Download{
		PresentationID: presentationID,
		DownloadURL:    url,
		Filename:       store.FileName(presentationID, "pptx"),
		Slides:         len(rendered.Slides),
		Dropped:        dropped,
	}, nil
}

func (s *Service) extract(ctx context.Context, html string) (string, error) {
	if s.oracle == nil {
		return "", ErrNoOracle
	}
	return s.oracle.Generate(ctx, llm.Request{
		Kind:        llm.KindExtract,
		Prompt:      s.prompts.BuildExtractionPrompt(textclean.Clean(html)),
		MaxTokens:   llm.ExtractMaxTokens,
		Temperature: llm.Temperature(llm.ExtractTemperature),
	})
}

func (s *Service) classifications(presentationID string) []core.Classification {
	if s.recorder == nil {
		return nil
	}
	conv, err := s.recorder.GetConversion(presentationID)
	if err != nil {
		s.log.Warn("failed to load classifications", "presentation_id", presentationID, "error", err)
		return nil
	}
	if conv == nil {
		return nil
	}
	return conv.Classifications
}

// RenderSlides applies the per-article slide budget and lays the deck out.
func (s *Service) RenderSlides(deck []slides.Slide, classifications []core.Classification) *layout.Deck {
	return s.engine.Render(s.enforcer.Enforce(deck, classifications))
}
