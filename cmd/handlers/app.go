package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"briefdeck/internal/config"
	"briefdeck/internal/convert"
	"briefdeck/internal/layout"
	"briefdeck/internal/llm"
	"briefdeck/internal/logger"
	"briefdeck/internal/store"
)

// app bundles the components shared by serve and convert.
type app struct {
	cfg     *config.Config
	service *convert.Service
	store   *store.Store
	sink    *store.FileSink
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Error("Failed to close store", err)
	}
}

// layoutOptions maps the deck settings onto the layout engine.
func layoutOptions(cfg *config.Config) layout.Options {
	brand := layout.DefaultBrand()
	if cfg.Deck.BrandName != "" {
		brand.Name = cfg.Deck.BrandName
	}
	if cfg.Deck.BrandColor != "" {
		brand.Color = cfg.Deck.BrandColor
	}
	if cfg.Deck.Logo != "" {
		brand.Logo = cfg.Deck.Logo
	}
	if cfg.Deck.TitleImage != "" {
		brand.TitleImage = cfg.Deck.TitleImage
	}
	if cfg.Deck.AgendaImage != "" {
		brand.AgendaImage = cfg.Deck.AgendaImage
	}
	if cfg.Deck.ThankYouImage != "" {
		brand.ThankYouImage = cfg.Deck.ThankYouImage
	}
	if len(cfg.Deck.TransitionImages) > 0 {
		brand.TransitionImages = cfg.Deck.TransitionImages
	}
	return layout.Options{
		Brand:          brand,
		TableRowHeight: cfg.Deck.TableRowHeight,
		Logger:         logger.Get(),
	}
}

// templateHTML reads the configured preview template, falling back to the embedded one.
func templateHTML(cfg *config.Config) string {
	path := cfg.Output.TemplateFile
	if path == "" {
		return convert.DefaultTemplate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read template, using built-in", "path", path, "error", err)
		}
		return convert.DefaultTemplate()
	}
	return string(data)
}

// newApp opens the store and builds the conversion service. When requireOracle is false a
// missing API key leaves the service without an oracle instead of failing.
func newApp(ctx context.Context, cfg *config.Config, requireOracle bool) (*app, error) {
	log := logger.Get()

	var oracle llm.Oracle
	if err := cfg.RequireOracle(); err != nil {
		if requireOracle {
			return nil, err
		}
		log.Warn("No language model configured; document processing is disabled", "error", err)
	} else {
		oracle, err = llm.New(ctx, cfg.AI, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.AI.Provider, err)
		}
	}

	a := &app{
		cfg:  cfg,
		sink: store.NewFileSink(cfg.Output.PublicDir, cfg.Output.PreviewsDir, cfg.Output.DownloadsDir),
	}

	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		log.Warn("Conversion history disabled", "error", err)
	} else {
		a.store = st
	}

	opts := convert.Options{
		Oracle: oracle,
		Sink:   a.sink,
		Layout: layoutOptions(cfg),
		Prompts: llm.Prompts{
			Brand:   cfg.Deck.BrandName,
			LogoURL: assetsURL(cfg.Deck.Logo),
		},
		Config: &convert.Config{
			ChunkTokens:  llm.DefaultChunkTokens,
			TemplateHTML: templateHTML(cfg),
			AssetsDir:    cfg.Output.AssetsDir,
			Title:        cfg.Deck.BrandName + " Monthly Briefing",
			Author:       cfg.Deck.BrandName,
		},
		Logger: log,
	}
	// Interfaces stay nil when the store failed to open.
	if a.store != nil {
		opts.Recorder = a.store
		opts.Cache = a.store
	}

	a.service, err = convert.New(opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize converter: %w", err)
	}
	return a, nil
}

func assetsURL(name string) string {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "://") {
		return name
	}
	return "/assets/" + name
}
