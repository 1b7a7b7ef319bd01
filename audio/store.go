// Package audio persists synthesized narration under the public directory.
package audio

import (
	"fmt"
	"path"
	"regexp"

	"github.com/spf13/afero"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is safe to embed in a file name.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Store writes narration files to a filesystem rooted at the audio directory
// and maps them to public URLs.
type Store struct {
	fs        afero.Fs
	urlPrefix string
}

// NewStore roots fs at dir. urlPrefix is the public path dir is served under.
func NewStore(fs afero.Fs, dir, urlPrefix string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Store{fs: afero.NewBasePathFs(fs, dir), urlPrefix: urlPrefix}, nil
}

// FileName is the name narration for requestID is stored under.
func FileName(requestID string) string {
	return "speech-" + requestID + ".wav"
}

// Save writes data for requestID, replacing an earlier file of the same id,
// and returns its public URL.
func (s *Store) Save(requestID string, data []byte) (string, error) {
	if !ValidID(requestID) {
		return "", fmt.Errorf("invalid request id %q", requestID)
	}
	name := FileName(requestID)
	if err := afero.WriteFile(s.fs, "/"+name, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path.Join("/", s.urlPrefix, name), nil
}
