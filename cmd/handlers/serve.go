package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"briefdeck/internal/classify"
	"briefdeck/internal/config"
	"briefdeck/internal/logger"
	"briefdeck/internal/server"
	"briefdeck/internal/store"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the conversion HTTP server",
		Long: `Start the briefdeck web server.

The server provides:
  • POST /upload and /process-document to turn a .docx into an HTML preview
  • POST /convert-to-ppt to turn a reviewed preview into a PowerPoint deck
  • /api/classify and /api/conversions for tooling
  • Static previews, downloads and brand assets

Examples:
  # Start server on the configured port (default 3000)
  briefdeck serve

  # Start on a custom port
  briefdeck serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 3000)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Get()
	log.Info("Starting HTTP server")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := server.Options{
		Converter:  a.service,
		Classifier: classify.New(classify.Options{Logger: log}),
		Static: map[string]string{
			"/previews":  a.sink.Dir(store.KindPreview),
			"/downloads": a.sink.Dir(store.KindDownload),
			"/assets":    cfg.Output.AssetsDir,
		},
		Config: serverCfg,
		Logger: log,
	}
	if a.store != nil {
		opts.History = a.store
	}
	srv := server.New(opts)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal or an error from server
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
