// Package audio stages recordings in a local working directory before they
// are sent for transcription. Content is passed through untouched; the
// SHA-256 computed while staging keys the transcript cache.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pronounce/internal/fileutil"
	"pronounce/internal/services"
)

// SupportedExtensions lists the container formats accepted for upload.
var SupportedExtensions = []string{".wav", ".mp3", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".mp4"}

var (
	// ErrUnsupportedFormat marks a file whose extension is not accepted.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported audio format", services.ErrValidation)
	// ErrEmptyAudio marks a zero-byte recording.
	ErrEmptyAudio = fmt.Errorf("%w: audio is empty", services.ErrValidation)
)

// Staged describes a recording copied into the staging directory.
type Staged struct {
	Path   string
	Source string
	SHA256 string
	Size   int64
}

// Stager writes recordings into a staging directory under unique names.
type Stager struct {
	dir string
}

// NewStager ensures dir exists.
func NewStager(dir string) (*Stager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("%w: staging directory is required", services.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// StageFile copies the recording at src into the staging directory.
func (s *Stager) StageFile(src string) (Staged, error) {
	ext, err := checkExtension(src)
	if err != nil {
		return Staged{}, err
	}
	in, err := os.Open(src)
	if err != nil {
		return Staged{}, fmt.Errorf("open audio: %w", err)
	}
	defer in.Close()
	return s.stage(src, ext, in)
}

// StageBytes writes an in-memory recording, for example a browser capture,
// into the staging directory. name only supplies the extension.
func (s *Stager) StageBytes(name string, data []byte) (Staged, error) {
	ext, err := checkExtension(name)
	if err != nil {
		return Staged{}, err
	}
	return s.stage(name, ext, bytes.NewReader(data))
}

// Remove deletes a staged recording. Missing files are not an error.
func (s *Stager) Remove(staged Staged) error {
	if staged.Path == "" {
		return nil
	}
	if err := os.Remove(staged.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged audio: %w", err)
	}
	return nil
}

func (s *Stager) stage(source, ext string, r io.Reader) (Staged, error) {
	dst := filepath.Join(s.dir, uuid.NewString()+ext)
	digest, err := fileutil.WriteStream(dst, r, 0o644)
	if err != nil {
		return Staged{}, fmt.Errorf("stage audio: %w", err)
	}
	if digest.Size == 0 {
		_ = os.Remove(dst)
		return Staged{}, fmt.Errorf("%w: %s", ErrEmptyAudio, source)
	}
	return Staged{Path: dst, Source: source, SHA256: digest.SHA256, Size: digest.Size}, nil
}

func checkExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, filepath.Base(name), strings.Join(SupportedExtensions, ", "))
}
