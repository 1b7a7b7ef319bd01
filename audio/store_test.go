package audio

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
)

func TestSaveWritesUnderBaseDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewStore(fs, "/srv/public/audio", "/audio")
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Save("t1", []byte("RIFF"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "/audio/speech-t1.wav" {
		t.Fatalf("url = %q", url)
	}
	got, err := afero.ReadFile(fs, "/srv/public/audio/speech-t1.wav")
	if err != nil || !bytes.Equal(got, []byte("RIFF")) {
		t.Fatalf("file = %q, %v", got, err)
	}

	if _, err := s.Save("t1", []byte("RIFF2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestSaveRejectsUnsafeIDs(t *testing.T) {
	s, err := NewStore(afero.NewMemMapFs(), "/audio", "/audio")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../etc/passwd", "a/b", "x y", string(make([]byte, 65))} {
		if _, err := s.Save(id, []byte{1}); err == nil {
			t.Errorf("Save(%q) succeeded", id)
		}
	}
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"1700000000000", "abc_DEF-9"} {
		if !ValidID(id) {
			t.Errorf("ValidID(%q) = false", id)
		}
	}
}
