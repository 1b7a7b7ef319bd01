package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"google.golang.org/api/option"
	gemini "google.golang.org/genai"

	"story_adventure/adventure"
	"story_adventure/audio"
	"story_adventure/config"
	"story_adventure/handlers"
	"story_adventure/llm"
	"story_adventure/store"
)

func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// providers returns the text, image and speech backends and a cleanup func.
func providers(ctx context.Context, cfg *config.Config) (adventure.ToolCaller, adventure.ImageGenerator, adventure.SpeechSynthesizer, func(), error) {
	if cfg.Mock {
		return llm.Mock{}, llm.Mock{}, llm.Mock{}, func() {}, nil
	}

	textClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mediaClient, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: gemini.BackendGeminiAPI,
	})
	if err != nil {
		textClient.Close()
		return nil, nil, nil, nil, err
	}

	text := llm.NewGemini(textClient, cfg.TextModel, cfg.GenerationTimeout)
	media := llm.NewMedia(mediaClient, llm.MediaConfig{
		ImageModel:  cfg.ImageModel,
		SpeechModel: cfg.SpeechModel,
		Voice:       cfg.Voice,
		Timeout:     cfg.GenerationTimeout,
	})
	return text, media, media, func() { textClient.Close() }, nil
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, images, speech, closeProviders, err := providers(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create Gemini clients")
	}
	defer closeProviders()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open story store")
	}
	defer db.Close()
	stories := store.NewCached(db, cfg.SessionTTL)

	audioStore, err := audio.NewStore(afero.NewOsFs(), cfg.AudioDir(), cfg.AudioURLPrefix)
	if err != nil {
		log.WithError(err).Fatal("failed to prepare audio directory")
	}

	engine := adventure.New(adventure.Deps{
		Text:    text,
		Images:  images,
		Speech:  speech,
		Audio:   audioStore,
		Stories: stories,
		Log:     log,
	})
	h := &handlers.Handler{Engine: engine, Stories: stories, Log: log}

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: h.Routes(handlers.RouteConfig{
			RateLimit:   cfg.RateLimitPerMinute,
			AudioDir:    cfg.AudioDir(),
			AudioPrefix: cfg.AudioURLPrefix,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "mock": cfg.Mock}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("server stopped")
}
