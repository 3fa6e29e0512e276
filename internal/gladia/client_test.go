package gladia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pronounce/internal/services"
)

const doneBody = `{
  "id": "job-1",
  "status": "done",
  "result": {"transcription": {"full_transcript": "hello world", "utterances": [
    {"text": "hello world", "words": [
      {"word": " hello", "start": 0.1, "end": 0.4, "confidence": 0.97},
      {"word": " world", "start": 0.5, "end": 0.9, "confidence": null}
    ]}
  ]}}
}`

func newTestClient(t *testing.T, server *httptest.Server, attempts int) *Client {
	t.Helper()
	client, err := New(Config{
		APIKey:          "secret",
		BaseURL:         server.URL + "/v2",
		Language:        "en",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: attempts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrUnauthorized) || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUploadSendsMultipartAudio(t *testing.T) {
	var gotName, gotField, gotKey string
	var gotBytes []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/upload" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotKey = r.Header.Get("x-gladia-key")
		file, header, err := r.FormFile("audio")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = "audio"
		gotName = header.Filename
		gotBytes, _ = io.ReadAll(file)
		_, _ = io.WriteString(w, `{"audio_url": "https://api.gladia.io/file/abc"}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	audioURL, err := newTestClient(t, server, 1).UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if audioURL != "https://api.gladia.io/file/abc" {
		t.Fatalf("audio url = %q", audioURL)
	}
	if gotKey != "secret" || gotField != "audio" || gotName != "take.wav" || string(gotBytes) != "RIFFdata" {
		t.Fatalf("upload captured key=%q field=%q name=%q bytes=%q", gotKey, gotField, gotName, gotBytes)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"bad key"}`, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, `{"message":"not audio"}`, ErrUploadFailed},
		{"server error", http.StatusBadGateway, "", services.ErrTransient},
		{"missing url", http.StatusOK, `{}`, ErrUploadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()
			_, err := newTestClient(t, server, 1).Upload(context.Background(), "a.wav", strings.NewReader("x"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitSendsAudioURLAndLanguage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/pre-recorded" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "job-1", "result_url": "https://api.gladia.io/v2/pre-recorded/job-1"}`)
	}))
	defer server.Close()

	job, err := newTestClient(t, server, 1).Submit(context.Background(), "https://audio")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID != "job-1" || !strings.HasSuffix(job.ResultURL, "/job-1") {
		t.Fatalf("job = %+v", job)
	}
	if captured["audio_url"] != "https://audio" {
		t.Fatalf("payload = %v", captured)
	}
	langs, _ := captured["language_config"].(map[string]any)["languages"].([]any)
	if len(langs) != 1 || langs[0] != "en" {
		t.Fatalf("language_config = %v", captured["language_config"])
	}
}

func TestPollWaitsForDone(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/pre-recorded/job-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch calls.Add(1) {
		case 1:
			_, _ = io.WriteString(w, `{"id":"job-1","status":"queued","result":null}`)
		case 2:
			_, _ = io.WriteString(w, `{"id":"job-1","status":"processing"}`)
		default:
			_, _ = io.WriteString(w, doneBody)
		}
	}))
	defer server.Close()

	result, err := newTestClient(t, server, 5).Poll(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if result.Transcript != "hello world" || len(result.Utterances) != 1 {
		t.Fatalf("result = %+v", result)
	}
	words := result.Utterances[0].Words
	if len(words) != 2 || *words[0].Word != " hello" || words[1].Confidence != nil {
		t.Fatalf("words = %+v", words)
	}
}

func TestPollExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"id":"job-1","status":"processing"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, 3).Poll(context.Background(), "job-1")
	if !errors.Is(err, ErrPollingExhausted) || !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want ErrPollingExhausted", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestPollErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"job-1","status":"error","error_code":422}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, 3).Poll(context.Background(), "job-1")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("err = %v, want ErrTranscriptionFailed", err)
	}
	if !strings.Contains(err.Error(), "422") {
		t.Fatalf("err = %v, want error code", err)
	}
}

func TestPollRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, doneBody)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server, 3).Poll(context.Background(), "job-1"); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestPollStopsOnUnauthorized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, 5).Poll(context.Background(), "job-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestPollHonoursCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"job-1","status":"queued"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, 10)
	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}
	_, err := client.Poll(ctx, "job-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTranscribeChainsCalls(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/v2/upload":
			_, _ = io.WriteString(w, `{"audio_url":"https://audio"}`)
		case "/v2/pre-recorded":
			_, _ = io.WriteString(w, `{"id":"job-1"}`)
		case "/v2/pre-recorded/job-1":
			_, _ = io.WriteString(w, doneBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "take.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	result, err := newTestClient(t, server, 2).Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.ID != "job-1" {
		t.Fatalf("result id = %q", result.ID)
	}
	want := "POST /v2/upload,POST /v2/pre-recorded,GET /v2/pre-recorded/job-1"
	if got := strings.Join(paths, ","); got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("x: %w", services.ErrTransient), true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{ErrUnauthorized, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("bad json"), false},
	}
	for _, tt := range tests {
		if got := IsRetriable(tt.err); got != tt.want {
			t.Fatalf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
