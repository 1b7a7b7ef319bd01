package story

import "strings"

// Genre labels recognized by the guidance deriver.
const (
	GenreAdventure      = "Adventure"
	GenreHorror         = "Horror"
	GenreRomance        = "Romance"
	GenreComedy         = "Comedy"
	GenreScienceFiction = "Science Fiction"
	GenreAction         = "Action"
)

// Genres lists the recognized genres in the order their clauses are emitted.
var Genres = []string{GenreAdventure, GenreHorror, GenreRomance, GenreComedy, GenreScienceFiction, GenreAction}

var imageClauses = map[string]string{
	GenreAdventure:      "Create an epic, expansive landscape with a sense of exploration and wonder. ",
	GenreHorror:         "Use muted colors, shadows, and create an eerie, unsettling atmosphere while maintaining the Ghibli aesthetic. ",
	GenreRomance:        "Include warm, soft lighting with delicate details and intimate framing. ",
	GenreComedy:         "Use bright, vibrant colors with exaggerated, playful expressions and visual humor. ",
	GenreScienceFiction: "Blend futuristic elements with organic shapes, unusual lighting, and fantastical technology. ",
	GenreAction:         "Create dynamic composition with a sense of motion, energy and tension. ",
}

var toneClauses = map[string]string{
	GenreAdventure:      "Keep the narration bold and curious, rewarding exploration with discovery. ",
	GenreHorror:         "Build dread through restraint, let silence and small wrong details unsettle the reader. ",
	GenreRomance:        "Let warmth and longing color the narration, giving weight to glances and small gestures. ",
	GenreComedy:         "Keep the narration light and playful, with comic timing and absurd turns. ",
	GenreScienceFiction: "Ground the narration in a sense of wonder at strange technology and vast possibility. ",
	GenreAction:         "Use short, punchy sentences that keep the pace fast and the stakes physical. ",
}

const (
	imageStyleClosing = "Maintain consistent character designs, color palettes, and environmental elements throughout the story. "
	toneClosing       = "Keep characters, narrative voice, and tone consistent from one scene to the next. "
)

// Guidance holds the free-text style and tone instructions injected into prompts.
type Guidance struct {
	ImageStyle string
	Tone       string
}

// DeriveGuidance builds image style and narrative tone guidance for the
// selected genres. Unknown genres are ignored.
func DeriveGuidance(genres []string) Guidance {
	selected := make(map[string]bool, len(genres))
	for _, g := range genres {
		selected[g] = true
	}

	var style, tone strings.Builder
	style.WriteString("Style guidance: ")
	tone.WriteString("Tone guidance: ")
	for _, g := range Genres {
		if !selected[g] {
			continue
		}
		style.WriteString(imageClauses[g])
		tone.WriteString(toneClauses[g])
	}
	style.WriteString(imageStyleClosing)
	tone.WriteString(toneClosing)

	return Guidance{ImageStyle: style.String(), Tone: tone.String()}
}

// KnownGenres filters genres down to the recognized labels, deduplicated, in
// the fixed genre order.
func KnownGenres(genres []string) []string {
	selected := make(map[string]bool, len(genres))
	for _, g := range genres {
		selected[g] = true
	}
	var out []string
	for _, g := range Genres {
		if selected[g] {
			out = append(out, g)
		}
	}
	return out
}
