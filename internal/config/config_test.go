package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	Reset()
	defer Reset()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected an error for an explicit missing config file, got cfg=%+v", cfg)
	}

	Reset()
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Provider != "groq" {
		t.Errorf("default provider = %q, want groq", cfg.AI.Provider)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes() != 10*1024*1024 {
		t.Errorf("default upload limit = %d, want 10MB", cfg.Server.MaxUploadBytes())
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Deck.BrandColor != "28295D" {
		t.Errorf("brand color = %q", cfg.Deck.BrandColor)
	}
	if len(cfg.Deck.TransitionImages) != 3 {
		t.Errorf("expected 3 default transition images, got %v", cfg.Deck.TransitionImages)
	}
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	Reset()
	defer Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "briefdeck.yaml")
	content := `
ai:
  provider: gemini
server:
  port: 8181
deck:
  brand_name: Acme
  table_row_height: 0.4
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.AI.Provider)
	}
	if cfg.AI.Gemini.APIKey != "test-key" {
		t.Errorf("gemini key not bound from env: %q", cfg.AI.Gemini.APIKey)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Deck.BrandName != "Acme" || cfg.Deck.TableRowHeight != 0.4 {
		t.Errorf("deck = %+v", cfg.Deck)
	}
	if err := cfg.RequireOracle(); err != nil {
		t.Errorf("RequireOracle: %v", err)
	}
}

func TestValidateConfig_UnknownProvider(t *testing.T) {
	cfg := &Config{
		AI:     AI{Provider: "bard"},
		Server: Server{Port: 3000, MaxUploadMB: 10},
	}
	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "Unknown LLM provider") {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestRequireOracle_Placeholder(t *testing.T) {
	cfg := &Config{AI: AI{Provider: "groq", Groq: OpenAIConfig{APIKey: "CHANGE_ME"}}}
	err := cfg.RequireOracle()
	if err == nil || !strings.Contains(err.Error(), "GROQ_API_KEY") {
		t.Errorf("expected missing key error naming GROQ_API_KEY, got %v", err)
	}
}

func TestPostProcessConfig_InvalidDuration(t *testing.T) {
	cfg := &Config{AI: AI{Provider: "gemini", Gemini: GeminiConfig{Timeout: "soon"}}}
	if err := postProcessConfig(cfg); err == nil {
		t.Error("expected invalid duration error")
	}
}

func TestPostProcessConfig_DebugRaisesLogLevel(t *testing.T) {
	cfg := &Config{App: App{Debug: true}, Logging: Logging{Level: "info"}}
	if err := postProcessConfig(cfg); err != nil {
		t.Fatalf("postProcessConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}
