package story

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"story_adventure/apperr"
)

// RequestKind tags the start-story request variants.
type RequestKind string

const (
	KindNew      RequestKind = "new"
	KindContinue RequestKind = "continue"
)

// Image is a decoded reference image.
type Image struct {
	MIMEType string
	Data     []byte
}

// NewStory starts a story from genres, an optional prompt and reference images.
type NewStory struct {
	Genres []string
	Prompt string
	Images []Image
}

// Continuation advances an existing story by one turn.
type Continuation struct {
	StoryID                 string
	NarratorPrompt          string
	OldGeneratedImagePrompt string
	StoryArc                string
	StoryHistory            []HistoryEntry
	SelectedButtonText      string
	PreviousOptions         []string
	Genres                  []string
	InitialPrompt           string
}

// Request is the validated, explicitly tagged start-story request. Exactly one
// of New and Continue is set, matching Kind.
type Request struct {
	Kind     RequestKind
	New      *NewStory
	Continue *Continuation
}

type wireRequest struct {
	Kind                    RequestKind    `json:"kind"`
	Genres                  []string       `json:"genres"`
	Prompt                  string         `json:"prompt"`
	Images                  []string       `json:"images"`
	StoryID                 string         `json:"storyId"`
	NarratorPrompt          *string        `json:"narratorPrompt"`
	OldGeneratedImagePrompt *string        `json:"oldGeneratedImagePrompt"`
	StoryArc                string         `json:"storyArc"`
	StoryHistory            []HistoryEntry `json:"storyHistory"`
	SelectedButtonText      string         `json:"selectedButtonText"`
	PreviousOptions         []string       `json:"previousOptions"`
	InitialPrompt           string         `json:"initialPrompt"`
}

// DecodeRequest parses a start-story body into the tagged form. When "kind" is
// absent the variant is inferred once from the fields present.
func DecodeRequest(body []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return Request{}, apperr.Validation("invalid JSON body: %v", err)
	}

	kind := w.Kind
	if kind == "" {
		switch {
		case w.NarratorPrompt != nil && w.OldGeneratedImagePrompt != nil:
			kind = KindContinue
		case w.StoryID != "" && w.Genres == nil:
			kind = KindContinue
		case w.Genres != nil:
			kind = KindNew
		default:
			return Request{}, apperr.Validation("invalid input format")
		}
	}

	switch kind {
	case KindNew:
		ns, err := w.newStory()
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: KindNew, New: ns}, nil
	case KindContinue:
		c, err := w.continuation()
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: KindContinue, Continue: c}, nil
	default:
		return Request{}, apperr.Validation("unknown request kind %q", kind)
	}
}

func (w wireRequest) newStory() (*NewStory, error) {
	var genres []string
	for _, g := range w.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		return nil, apperr.Validation("at least one genre is required")
	}

	images := make([]Image, 0, len(w.Images))
	for i, raw := range w.Images {
		img, err := ParseDataURI(raw)
		if err != nil {
			return nil, apperr.Validation("image %d: %v", i+1, err)
		}
		images = append(images, img)
	}

	return &NewStory{Genres: genres, Prompt: strings.TrimSpace(w.Prompt), Images: images}, nil
}

func (w wireRequest) continuation() (*Continuation, error) {
	if w.StoryArc == "" && w.StoryID == "" {
		return nil, apperr.Validation("missing story arc")
	}
	c := &Continuation{
		StoryID:            w.StoryID,
		StoryArc:           w.StoryArc,
		StoryHistory:       w.StoryHistory,
		SelectedButtonText: strings.TrimSpace(w.SelectedButtonText),
		PreviousOptions:    w.PreviousOptions,
		Genres:             w.Genres,
		InitialPrompt:      strings.TrimSpace(w.InitialPrompt),
	}
	if w.NarratorPrompt != nil {
		c.NarratorPrompt = *w.NarratorPrompt
	}
	if w.OldGeneratedImagePrompt != nil {
		c.OldGeneratedImagePrompt = *w.OldGeneratedImagePrompt
	}
	return c, nil
}

// ParseDataURI decodes a base64 data URI such as "data:image/png;base64,....".
// A bare base64 payload is accepted as JPEG.
func ParseDataURI(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, errEmptyImage
	}
	mime := "image/jpeg"
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return Image{}, errMalformedDataURI
		}
		mt, enc, _ := strings.Cut(header, ";")
		if enc != "base64" {
			return Image{}, errMalformedDataURI
		}
		if !strings.HasPrefix(mt, "image/") {
			return Image{}, errNotImage
		}
		mime, payload = mt, data
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, err
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// DataURI encodes raw bytes as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
