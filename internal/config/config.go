package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`

	OpenAIAPIKey           string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL          string        `mapstructure:"OPENAI_BASE_URL"`
	CompletionModel        string        `mapstructure:"COMPLETION_MODEL"`
	CompletionMaxTokens    int           `mapstructure:"COMPLETION_MAX_TOKENS"`
	CompletionTimeout      time.Duration `mapstructure:"COMPLETION_TIMEOUT"`
	CompletionMaxRetries   int           `mapstructure:"COMPLETION_MAX_RETRIES"`
	CompletionRetryWait    time.Duration `mapstructure:"COMPLETION_RETRY_WAIT"`
	CompletionRetryMaxWait time.Duration `mapstructure:"COMPLETION_RETRY_MAX_WAIT"`

	LetterheadPath string `mapstructure:"LETTERHEAD_PATH"`
	PDFAuthor      string `mapstructure:"PDF_AUTHOR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("REQUEST_TIMEOUT", "90s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("COMPLETION_MODEL", "gpt-4")
	v.SetDefault("COMPLETION_MAX_TOKENS", 500)
	v.SetDefault("COMPLETION_TIMEOUT", "60s")
	v.SetDefault("COMPLETION_MAX_RETRIES", 0)
	v.SetDefault("COMPLETION_RETRY_WAIT", "1s")
	v.SetDefault("COMPLETION_RETRY_MAX_WAIT", "10s")
	v.SetDefault("LETTERHEAD_PATH", "header-logo.png")
	v.SetDefault("PDF_AUTHOR", "Clinical Documentation Assistant")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_BASE_URL")
	v.BindEnv("COMPLETION_MODEL")
	v.BindEnv("COMPLETION_MAX_TOKENS")
	v.BindEnv("COMPLETION_TIMEOUT")
	v.BindEnv("COMPLETION_MAX_RETRIES")
	v.BindEnv("COMPLETION_RETRY_WAIT")
	v.BindEnv("COMPLETION_RETRY_MAX_WAIT")
	v.BindEnv("LETTERHEAD_PATH")
	v.BindEnv("PDF_AUTHOR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the structural settings every command needs. It does not
// require the completion API key; commands that call the model also run
// RequireCompletion.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL is not a valid level: %w", err)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.BodyLimit == "" {
		return fmt.Errorf("BODY_LIMIT is required")
	}

	u, err := url.Parse(c.OpenAIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("OPENAI_BASE_URL must be an absolute http(s) URL, got %q", c.OpenAIBaseURL)
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("COMPLETION_MODEL is required")
	}
	if c.CompletionMaxTokens <= 0 {
		return fmt.Errorf("COMPLETION_MAX_TOKENS must be positive, got %d", c.CompletionMaxTokens)
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive, got %s", c.CompletionTimeout)
	}
	if c.CompletionMaxRetries < 0 {
		return fmt.Errorf("COMPLETION_MAX_RETRIES must not be negative, got %d", c.CompletionMaxRetries)
	}
	if c.CompletionRetryMaxWait < c.CompletionRetryWait {
		return fmt.Errorf("COMPLETION_RETRY_MAX_WAIT (%s) must not be shorter than COMPLETION_RETRY_WAIT (%s)",
			c.CompletionRetryMaxWait, c.CompletionRetryWait)
	}
	// The request deadline bounds the whole pipeline, completion included.
	if c.RequestTimeout < c.CompletionTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must not be shorter than COMPLETION_TIMEOUT (%s)",
			c.RequestTimeout, c.CompletionTimeout)
	}
	return nil
}

// RequireCompletion checks the settings needed to call the completion
// service.
func (c *Config) RequireCompletion() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to generate notes")
	}
	return nil
}
