package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "0.0.0.0:9779" || cfg.TextModel != "gemini-2.0-flash-001" || cfg.GenerationTimeout != 90*time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.AudioDir() != "public/audio" {
		t.Fatalf("audio dir = %q", cfg.AudioDir())
	}
	// Illustrations request a 16:9 frame, which only the image models accept.
	if cfg.ImageModel != "gemini-2.5-flash-image" {
		t.Fatalf("image model = %q", cfg.ImageModel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MOCK_PROVIDER", "true")
	t.Setenv("GENERATION_TIMEOUT", "15s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("AUDIO_URL_PREFIX", "narration/")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Mock || cfg.GenerationTimeout != 15*time.Second || cfg.RateLimitPerMinute != 5 || cfg.AudioURLPrefix != "/narration" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NARRATION_VOICE=Puck\nMOCK_PROVIDER=true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process variables; register cleanup for them.
	t.Setenv("NARRATION_VOICE", "")
	os.Unsetenv("NARRATION_VOICE")
	t.Setenv("MOCK_PROVIDER", "")
	os.Unsetenv("MOCK_PROVIDER")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voice != "Puck" || !cfg.Mock {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MOCK_PROVIDER", "false")
	if _, err := Load(""); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("LOG_FORMAT", "xml")
	if _, err := Load(""); err == nil {
		t.Fatal("expected log format error")
	}
}
