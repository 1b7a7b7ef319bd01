// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	GeminiAPIKey string
	TextModel    string
	ImageModel   string
	SpeechModel  string
	Voice        string

	ListenAddr     string
	PublicDir      string
	AudioURLPrefix string
	DBPath         string

	GenerationTimeout  time.Duration
	SessionTTL         time.Duration
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string
	Mock      bool
}

// AudioDir is where narration files are written.
func (c *Config) AudioDir() string {
	return path.Join(c.PublicDir, strings.TrimPrefix(c.AudioURLPrefix, "/"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("TEXT_MODEL", "gemini-2.0-flash-001")
	v.SetDefault("IMAGE_MODEL", "gemini-2.5-flash-image")
	v.SetDefault("SPEECH_MODEL", "gemini-2.5-flash-preview-tts")
	v.SetDefault("NARRATION_VOICE", "Kore")
	v.SetDefault("LISTEN_ADDR", "0.0.0.0:9779")
	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("AUDIO_URL_PREFIX", "/audio")
	v.SetDefault("DB_PATH", "stories.db")
	v.SetDefault("GENERATION_TIMEOUT", 90*time.Second)
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("MOCK_PROVIDER", false)
}

// Load reads envFile when it exists, then the process environment.
// Environment variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		GeminiAPIKey:       v.GetString("GEMINI_API_KEY"),
		TextModel:          v.GetString("TEXT_MODEL"),
		ImageModel:         v.GetString("IMAGE_MODEL"),
		SpeechModel:        v.GetString("SPEECH_MODEL"),
		Voice:              v.GetString("NARRATION_VOICE"),
		ListenAddr:         v.GetString("LISTEN_ADDR"),
		PublicDir:          v.GetString("PUBLIC_DIR"),
		AudioURLPrefix:     "/" + strings.Trim(v.GetString("AUDIO_URL_PREFIX"), "/"),
		DBPath:             v.GetString("DB_PATH"),
		GenerationTimeout:  v.GetDuration("GENERATION_TIMEOUT"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		Mock:               v.GetBool("MOCK_PROVIDER"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" && !c.Mock {
		return errors.New("GEMINI_API_KEY is required unless MOCK_PROVIDER is enabled")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	if c.AudioURLPrefix == "/" {
		return errors.New("AUDIO_URL_PREFIX must not be the site root")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
