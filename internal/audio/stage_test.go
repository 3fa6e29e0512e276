package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pronounce/internal/services"
)

func TestStageFilePassesBytesThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Take One.WAV")
	if err := os.WriteFile(src, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	stager, err := NewStager(filepath.Join(dir, "staging"))
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}

	staged, err := stager.StageFile(src)
	if err != nil {
		t.Fatalf("StageFile: %v", err)
	}
	if filepath.Dir(staged.Path) != stager.Dir() || !strings.HasSuffix(staged.Path, ".wav") {
		t.Fatalf("staged path = %q", staged.Path)
	}
	got, err := os.ReadFile(staged.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "RIFF....WAVE" || staged.Size != 12 || len(staged.SHA256) != 64 {
		t.Fatalf("staged = %+v content %q", staged, got)
	}

	again, err := stager.StageFile(src)
	if err != nil {
		t.Fatalf("StageFile again: %v", err)
	}
	if again.Path == staged.Path || again.SHA256 != staged.SHA256 {
		t.Fatalf("second staging = %+v, first = %+v", again, staged)
	}

	if err := stager.Remove(staged); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := stager.Remove(staged); err != nil {
		t.Fatalf("Remove twice: %v", err)
	}
}

func TestStageBytes(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	staged, err := stager.StageBytes("recording.webm", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("StageBytes: %v", err)
	}
	if staged.Size != 3 || filepath.Ext(staged.Path) != ".webm" {
		t.Fatalf("staged = %+v", staged)
	}
}

func TestStageRejectsBadInput(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	if _, err := stager.StageBytes("notes.txt", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := stager.StageBytes("empty.wav", nil); !errors.Is(err, ErrEmptyAudio) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrEmptyAudio", err)
	}
	entries, _ := os.ReadDir(stager.Dir())
	if len(entries) != 0 {
		t.Fatalf("rejected audio left files: %v", entries)
	}
}

func TestNewStagerRequiresDir(t *testing.T) {
	if _, err := NewStager(" "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
