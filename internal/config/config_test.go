package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.CompletionModel != "gpt-4" {
		t.Errorf("expected default model gpt-4, got %s", cfg.CompletionModel)
	}
	if cfg.CompletionMaxTokens != 500 {
		t.Errorf("expected default max tokens 500, got %d", cfg.CompletionMaxTokens)
	}
	if cfg.CompletionTimeout != 60*time.Second {
		t.Errorf("expected default completion timeout 60s, got %s", cfg.CompletionTimeout)
	}
	if cfg.CompletionMaxRetries != 0 {
		t.Errorf("expected no retries by default, got %d", cfg.CompletionMaxRetries)
	}
	if cfg.LetterheadPath != "header-logo.png" {
		t.Errorf("expected default letterhead path, got %s", cfg.LetterheadPath)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("COMPLETION_MODEL", "gpt-4o")
	t.Setenv("COMPLETION_TIMEOUT", "15s")
	t.Setenv("COMPLETION_MAX_RETRIES", "2")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Error("expected API key from env")
	}
	if cfg.CompletionModel != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %s", cfg.CompletionModel)
	}
	if cfg.CompletionTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %s", cfg.CompletionTimeout)
	}
	if cfg.CompletionMaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", cfg.CompletionMaxRetries)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if err := cfg.RequireCompletion(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
	if !c.IsProduction() {
		t.Error("expected IsProduction() to return true for production")
	}
}

func validConfig() *Config {
	return &Config{
		Port:                   "8000",
		Env:                    "development",
		LogLevel:               "info",
		RateLimitRPS:           10,
		RateLimitBurst:         20,
		RequestTimeout:         90 * time.Second,
		BodyLimit:              "1M",
		OpenAIBaseURL:          "https://api.openai.com/v1",
		CompletionModel:        "gpt-4",
		CompletionMaxTokens:    500,
		CompletionTimeout:      60 * time.Second,
		CompletionRetryWait:    time.Second,
		CompletionRetryMaxWait: 10 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"upper case log level", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
		{"zero rps", func(c *Config) { c.RateLimitRPS = 0 }, "RATE_LIMIT"},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"empty body limit", func(c *Config) { c.BodyLimit = "" }, "BODY_LIMIT"},
		{"relative base url", func(c *Config) { c.OpenAIBaseURL = "/v1" }, "OPENAI_BASE_URL"},
		{"ftp base url", func(c *Config) { c.OpenAIBaseURL = "ftp://x/v1" }, "OPENAI_BASE_URL"},
		{"empty model", func(c *Config) { c.CompletionModel = "" }, "COMPLETION_MODEL"},
		{"zero max tokens", func(c *Config) { c.CompletionMaxTokens = 0 }, "COMPLETION_MAX_TOKENS"},
		{"zero completion timeout", func(c *Config) { c.CompletionTimeout = 0 }, "COMPLETION_TIMEOUT"},
		{"negative retries", func(c *Config) { c.CompletionMaxRetries = -1 }, "COMPLETION_MAX_RETRIES"},
		{"max wait below wait", func(c *Config) { c.CompletionRetryMaxWait = 500 * time.Millisecond }, "COMPLETION_RETRY_MAX_WAIT"},
		{"request shorter than completion", func(c *Config) { c.RequestTimeout = 30 * time.Second }, "REQUEST_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireCompletion(t *testing.T) {
	c := validConfig()
	if err := c.RequireCompletion(); err == nil {
		t.Error("expected error without an API key")
	}
	c.OpenAIAPIKey = "   "
	if err := c.RequireCompletion(); err == nil {
		t.Error("expected error for a blank API key")
	}
	c.OpenAIAPIKey = "sk-test"
	if err := c.RequireCompletion(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
