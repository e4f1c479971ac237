package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Model     ModelConfig     `yaml:"model" mapstructure:"model"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	CSVPath     string `yaml:"csv_path" mapstructure:"csv_path"`
}

// ModelConfig configures the extraction model.
type ModelConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	Name           string  `yaml:"name" mapstructure:"name"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	SystemPrompt   string  `yaml:"system_prompt" mapstructure:"system_prompt"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryBackoffMs int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API credentials.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// ReaderFallback retries refused pages through the Jina reader.
	ReaderFallback bool   `yaml:"reader_fallback" mapstructure:"reader_fallback"`
	ReaderURL      string `yaml:"reader_url" mapstructure:"reader_url"`
	ReaderKey      string `yaml:"reader_key" mapstructure:"reader_key"`
}

// PipelineConfig configures the crawl loop.
type PipelineConfig struct {
	DelaySecs float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
}

// ExtractConfig configures prompt construction.
type ExtractConfig struct {
	MaxContentChars int `yaml:"max_content_chars" mapstructure:"max_content_chars"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var (
	validDrivers   = []string{"sqlite", "postgres", "csv"}
	validProviders = []string{"openwebui", "anthropic"}
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCHOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The extraction scripts were configured through these variables.
	bindings := map[string][]string{
		"model.base_url":   {"SCHOOLS_MODEL_BASE_URL", "OPENWEBUI_API_URL"},
		"model.api_key":    {"SCHOOLS_MODEL_API_KEY", "OPENWEBUI_API_KEY"},
		"anthropic.key":    {"SCHOOLS_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"},
		"fetch.reader_key": {"SCHOOLS_FETCH_READER_KEY", "JINA_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "schools.db")
	v.SetDefault("store.csv_path", "data/extracted_information.csv")
	v.SetDefault("model.provider", "openwebui")
	v.SetDefault("model.name", "gpt-oss-120b")
	v.SetDefault("model.base_url", "http://localhost:8000/api/chat")
	v.SetDefault("model.api_key", "your_api_key_here")
	v.SetDefault("model.system_prompt", "")
	v.SetDefault("model.max_tokens", 0)
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.max_attempts", 3)
	v.SetDefault("model.retry_backoff_ms", 0)
	v.SetDefault("model.timeout_secs", 120)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; schools-cli/1.0)")
	v.SetDefault("fetch.max_body_bytes", 4<<20)
	v.SetDefault("fetch.reader_fallback", false)
	v.SetDefault("fetch.reader_url", "https://r.jina.ai")
	v.SetDefault("pipeline.delay_secs", 5)
	v.SetDefault("extract.max_content_chars", 30000)
	v.SetDefault("server.port", 5328)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if !contains(validDrivers, c.Store.Driver) {
		return eris.Errorf("config: unknown store driver %q (want one of %s)", c.Store.Driver, strings.Join(validDrivers, ", "))
	}
	switch c.Store.Driver {
	case "csv":
		if c.Store.CSVPath == "" {
			return eris.New("config: store.csv_path is required for the csv driver")
		}
	default:
		if c.Store.DatabaseURL == "" {
			return eris.Errorf("config: store.database_url is required for the %s driver", c.Store.Driver)
		}
	}

	if !contains(validProviders, c.Model.Provider) {
		return eris.Errorf("config: unknown model provider %q (want one of %s)", c.Model.Provider, strings.Join(validProviders, ", "))
	}
	if c.Model.Name == "" {
		return eris.New("config: model.name is required")
	}
	if c.Model.Provider == "anthropic" && c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required for the anthropic provider")
	}
	if c.Model.MaxAttempts < 1 {
		return eris.New("config: model.max_attempts must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Pipeline.DelaySecs < 0 {
		return eris.New("config: pipeline.delay_secs must not be negative")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
