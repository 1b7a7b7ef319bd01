package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"story_adventure/adventure"
	"story_adventure/apperr"
	"story_adventure/export"
	"story_adventure/store"
	"story_adventure/story"
	"story_adventure/templates"
)

// Reference images arrive inline as data URIs.
const maxBodyBytes = 20 << 20

// Engine runs the generative pipeline behind the API.
type Engine interface {
	Start(ctx context.Context, req story.NewStory) (story.ResponseData, error)
	Continue(ctx context.Context, req story.Continuation) (story.ResponseData, error)
	NextFrame(ctx context.Context, frames []adventure.FramePrompt) (story.ResponseData, error)
	Synthesize(ctx context.Context, text, tone, requestID string) (string, error)
}

// Stories reads recorded stories.
type Stories interface {
	Get(ctx context.Context, id string) (store.Story, error)
}

type Handler struct {
	Engine  Engine
	Stories Stories
	Log     logrus.FieldLogger
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("request body is unreadable or too large")
	}
	return body, nil
}

// StartStory starts a new story or continues an existing one, depending on
// the request shape.
func (h *Handler) StartStory(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := story.DecodeRequest(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var resp story.ResponseData
	switch req.Kind {
	case story.KindNew:
		resp, err = h.Engine.Start(r.Context(), *req.New)
	case story.KindContinue:
		resp, err = h.Engine.Continue(r.Context(), *req.Continue)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type nextFrameRequest struct {
	Input []adventure.FramePrompt `json:"input"`
}

// NextFrame generates a scene from earlier prompt pairs.
func (h *Handler) NextFrame(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req nextFrameRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, r, apperr.Validation("wrong input: %v", err))
		return
	}
	if len(req.Input) == 0 {
		h.fail(w, r, apperr.Validation("wrong input: input must be a non-empty list of {prompt, previousImagePrompt}"))
		return
	}

	resp, err := h.Engine.NextFrame(r.Context(), req.Input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type ttsRequest struct {
	NarratorPrompt string          `json:"narratorPrompt"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Tone           string          `json:"tone"`
}

// timestampID accepts the timestamp as a JSON string or an integer.
func timestampID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}
	return ""
}

// TTS narrates a scene and returns the URL of the stored audio.
func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req ttsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, r, apperr.Validation("invalid JSON body: %v", err))
		return
	}
	if strings.TrimSpace(req.NarratorPrompt) == "" {
		h.fail(w, r, apperr.Validation("missing narratorPrompt"))
		return
	}
	id := timestampID(req.Timestamp)
	if id == "" {
		h.fail(w, r, apperr.Validation("missing timestamp"))
		return
	}

	url, err := h.Engine.Synthesize(r.Context(), req.NarratorPrompt, req.Tone, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setNoCache(w.Header())
	writeJSON(w, http.StatusOK, map[string]string{"audioUrl": url})
}

// GetStory returns the transcript of a recorded story.
func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DownloadStory returns the transcript as a PDF attachment.
func (h *Handler) DownloadStory(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="story-%s.pdf"`, s.ID))
	if err := export.PDF(w, s); err != nil {
		h.logger(r).WithError(err).Error("failed to write story pdf")
	}
}

// StoryPage renders the transcript of a recorded story as HTML.
func (h *Handler) StoryPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			http.NotFound(w, r)
			return
		}
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.StoryView(s).Render(r.Context(), w); err != nil {
		h.logger(r).WithError(err).Error("failed to render story page")
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index("Illustrated Adventure", story.Genres).Render(r.Context(), w); err != nil {
		h.logger(r).WithError(err).Error("failed to render index")
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
