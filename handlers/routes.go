package handlers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouteConfig configures Routes.
type RouteConfig struct {
	// RateLimit is the per-IP budget per minute on generation endpoints.
	RateLimit int
	// AudioDir is served under AudioPrefix when set.
	AudioDir    string
	AudioPrefix string
}

// Routes builds the service's HTTP handler.
func (h *Handler) Routes(cfg RouteConfig) http.Handler {
	log := h.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	limit := RateLimit(cfg.RateLimit)

	mux := http.NewServeMux()
	mux.Handle("POST /api/startstory", limit(http.HandlerFunc(h.StartStory)))
	mux.Handle("POST /api/nextframe", limit(http.HandlerFunc(h.NextFrame)))
	mux.Handle("POST /api/tts", limit(http.HandlerFunc(h.TTS)))
	mux.HandleFunc("GET /api/story/{id}", h.GetStory)
	mux.HandleFunc("GET /api/story/{id}/download", h.DownloadStory)
	mux.HandleFunc("GET /story/{id}", h.StoryPage)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", h.Index)

	if cfg.AudioDir != "" {
		prefix := "/" + strings.Trim(cfg.AudioPrefix, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(cfg.AudioDir)}))
		mux.Handle("GET "+prefix, NoCache(files))
	}

	return chain(mux, RequestID, Recovery(log), Logging(log), Metrics(mux))
}

// filesOnly hides directories so the narration folder cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
