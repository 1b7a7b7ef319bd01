package export

import (
	"bytes"
	"testing"

	"story_adventure/store"
)

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, store.Story{
		Genres: []string{"Horror", "Comedy"},
		Prompt: "a lighthouse – at dusk",
		Arc:    "SECRET-ARC",
		Steps: []store.Step{
			{NarratorPrompt: "You wake on the rocks.", Choice: "Climb"},
			{NarratorPrompt: "The lamp flickers."},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", buf.Bytes()[:8])
	}
	if bytes.Contains(buf.Bytes(), []byte("SECRET-ARC")) {
		t.Fatal("arc leaked into the transcript")
	}
}
