package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Server  Server  `mapstructure:"server"`
	Output  Output  `mapstructure:"output"`
	Deck    Deck    `mapstructure:"deck"`
	Logging Logging `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds structuring-oracle configuration
type AI struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Groq     OpenAIConfig `mapstructure:"groq"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds configuration for OpenAI-compatible chat completion APIs
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin settings
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Output holds output locations
type Output struct {
	PublicDir    string `mapstructure:"public_dir"`
	PreviewsDir  string `mapstructure:"previews_dir"`
	DownloadsDir string `mapstructure:"downloads_dir"`
	AssetsDir    string `mapstructure:"assets_dir"`
	TemplateFile string `mapstructure:"template_file"`
}

// Deck holds branding and layout settings for rendered decks
type Deck struct {
	BrandName        string   `mapstructure:"brand_name"`
	BrandColor       string   `mapstructure:"brand_color"`
	TableRowHeight   float64  `mapstructure:"table_row_height"`
	Logo             string   `mapstructure:"logo"`
	TitleImage       string   `mapstructure:"title_image"`
	AgendaImage      string   `mapstructure:"agenda_image"`
	ThankYouImage    string   `mapstructure:"thankyou_image"`
	TransitionImages []string `mapstructure:"transition_images"`
	PNGDPI           float64  `mapstructure:"png_dpi"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".briefdeck")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".briefdeck")

	viper.SetDefault("ai.provider", "groq")
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.gemini.max_tokens", 65536)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "120s")
	viper.SetDefault("ai.openai.max_tokens", 16384)
	viper.SetDefault("ai.openai.temperature", 0.7)
	viper.SetDefault("ai.groq.model", "openai/gpt-oss-120b")
	viper.SetDefault("ai.groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("ai.groq.timeout", "120s")
	viper.SetDefault("ai.groq.max_tokens", 65536)
	viper.SetDefault("ai.groq.temperature", 0.7)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "300s")
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("server.request_timeout", "290s")
	viper.SetDefault("server.max_upload_mb", 10)
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("output.public_dir", "public")
	viper.SetDefault("output.previews_dir", "previews")
	viper.SetDefault("output.downloads_dir", "downloads")
	viper.SetDefault("output.assets_dir", "public/assets")
	viper.SetDefault("output.template_file", "template.html")

	viper.SetDefault("deck.brand_name", "BCS")
	viper.SetDefault("deck.brand_color", "28295D")
	viper.SetDefault("deck.table_row_height", 0)
	viper.SetDefault("deck.logo", "image8.png")
	viper.SetDefault("deck.title_image", "image9.jpg")
	viper.SetDefault("deck.agenda_image", "image7.jpg")
	viper.SetDefault("deck.thankyou_image", "image9.jpg")
	viper.SetDefault("deck.transition_images", []string{"image10.jpg", "image11.jpg", "image12.jpg"})
	viper.SetDefault("deck.png_dpi", 96)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.groq.api_key", []string{
		"GROQ_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"LLM_PROVIDER",
		"BRIEFDECK_PROVIDER",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"BRIEFDECK_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))

	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Output.PublicDir != "" {
		config.Output.PublicDir = expandPath(config.Output.PublicDir)
	}
	if config.Output.AssetsDir != "" {
		config.Output.AssetsDir = expandPath(config.Output.AssetsDir)
	}
	if config.App.Debug {
		config.Logging.Level = "debug"
	}

	durations := map[string]string{
		"ai.gemini.timeout": config.AI.Gemini.Timeout,
		"ai.openai.timeout": config.AI.OpenAI.Timeout,
		"ai.groq.timeout":   config.AI.Groq.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present.
// API keys are checked lazily by RequireOracle so offline commands (render, classify) work without one.
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini", "openai", "groq":
	default:
		errors = append(errors, fmt.Sprintf("Unknown LLM provider: %s. Supported: gemini, openai, groq", config.AI.Provider))
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("Invalid server port: %d", config.Server.Port))
	}

	if config.Server.MaxUploadMB <= 0 {
		errors = append(errors, "server.max_upload_mb must be positive")
	}

	if config.Deck.TableRowHeight < 0 {
		errors = append(errors, "deck.table_row_height must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequireOracle checks that the selected provider has an API key configured.
func (c *Config) RequireOracle() error {
	var key string
	switch c.AI.Provider {
	case "gemini":
		key = c.AI.Gemini.APIKey
	case "openai":
		key = c.AI.OpenAI.APIKey
	case "groq":
		key = c.AI.Groq.APIKey
	}
	if !isValidAPIKey(key) {
		return fmt.Errorf("%s API key is required. Set %s or ai.%s.api_key in the config file",
			c.AI.Provider, envKeyFor(c.AI.Provider), c.AI.Provider)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes
func (s Server) MaxUploadBytes() int64 {
	return s.MaxUploadMB * 1024 * 1024
}

func envKeyFor(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-groq-key", "your-openai-key", "your-gemini-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
