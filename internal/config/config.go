package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the screener service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	UseFallback      bool
	RemoteTimeout    time.Duration
	RankConcurrency  int
	RedisURL         string
	EvalCacheTTL     time.Duration
	NATSURL          string
	EventSubjectBase string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Provider names the scoring path the service will prefer.
func (c Config) Provider() string {
	if c.UseFallback {
		return "fallback"
	}
	return "openai"
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCREENER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Screener API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("remote_timeout_ms", 30000)
	v.SetDefault("rank_concurrency", 8)
	v.SetDefault("eval_cache_ttl", "10m")
	v.SetDefault("events.subject_base", "screener")

	ttlString := v.GetString("eval_cache_ttl")
	if ttlString == "" {
		ttlString = "10m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid eval cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("remote_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString("openai.api_key")),
		OpenAIModel:      v.GetString("openai.model"),
		OpenAIBaseURL:    v.GetString("openai.base_url"),
		RemoteTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		RankConcurrency:  v.GetInt("rank_concurrency"),
		RedisURL:         v.GetString("redis.url"),
		EvalCacheTTL:     ttl,
		NATSURL:          v.GetString("nats.url"),
		EventSubjectBase: v.GetString("events.subject_base"),
	}

	fallbackFlag := strings.ToLower(strings.TrimSpace(v.GetString("use_fallback")))
	cfg.UseFallback = fallbackFlag == "1" || fallbackFlag == "true"

	// Remote scoring is impossible without a credential, regardless of the flag.
	if cfg.OpenAIAPIKey == "" {
		cfg.UseFallback = true
	}

	if cfg.RankConcurrency <= 0 {
		cfg.RankConcurrency = 8
	}

	return cfg, nil
}
