package gladia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pronounce/internal/services"
	"pronounce/internal/transcript"
)

const (
	DefaultBaseURL         = "https://api.gladia.io/v2"
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 10
	defaultHTTPTimeout     = 60 * time.Second
	apiKeyHeader           = "x-gladia-key"
)

// Job status values reported by the API.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Config describes the Gladia client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	// Language pins the spoken language; empty lets the provider detect it.
	Language        string
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPClient      *http.Client
}

// Client wraps the Gladia REST API.
type Client struct {
	apiKey       string
	baseURL      *url.URL
	language     string
	pollInterval time.Duration
	maxAttempts  int
	http         *http.Client
	sleep        func(context.Context, time.Duration) error
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required (set gladia.api_key or GLADIA_API_KEY)", ErrUnauthorized)
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: gladia: parse base url: %w", services.ErrConfiguration, err)
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	attempts := cfg.MaxPollAttempts
	if attempts <= 0 {
		attempts = DefaultMaxPollAttempts
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		language:     strings.TrimSpace(cfg.Language),
		pollInterval: interval,
		maxAttempts:  attempts,
		http:         client,
		sleep:        SleepWithContext,
	}, nil
}

// Job identifies a submitted transcription.
type Job struct {
	ID        string `json:"id"`
	ResultURL string `json:"result_url"`
}

// Result is one poll of a transcription job.
type Result struct {
	ID         string
	Status     string
	ErrorCode  int
	Transcript string
	Utterances []transcript.Utterance
}

// Done reports whether the job finished successfully.
func (r Result) Done() bool {
	return r.Status == StatusDone
}

// Pending reports whether the job is still queued or running.
func (r Result) Pending() bool {
	return r.Status == StatusQueued || r.Status == StatusProcessing
}

// UploadFile uploads the audio file at path.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open audio: %w", ErrUploadFailed, err)
	}
	defer file.Close()
	return c.Upload(ctx, filepath.Base(path), file)
}

// Upload sends audio as the multipart field "audio" and returns the hosted
// audio URL.
func (c *Client) Upload(ctx context.Context, name string, audio io.Reader) (string, error) {
	if c == nil {
		return "", errors.New("gladia: client is nil")
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreatePart(audioPartHeader(name))
	if err != nil {
		return "", fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("%w: read audio: %w", ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath("upload").String(), &body)
	if err != nil {
		return "", fmt.Errorf("gladia: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload request: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", statusError(resp, ErrUploadFailed, "upload")
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %w", ErrUploadFailed, err)
	}
	if strings.TrimSpace(payload.AudioURL) == "" {
		return "", fmt.Errorf("%w: upload response missing audio_url", ErrUploadFailed)
	}
	return payload.AudioURL, nil
}

// Submit starts a pre-recorded transcription job for an uploaded audio URL.
func (c *Client) Submit(ctx context.Context, audioURL string) (Job, error) {
	if c == nil {
		return Job{}, errors.New("gladia: client is nil")
	}
	if strings.TrimSpace(audioURL) == "" {
		return Job{}, fmt.Errorf("%w: audio url is required", ErrTranscriptionFailed)
	}
	request := submitRequest{AudioURL: audioURL}
	if c.language != "" {
		request.LanguageConfig = &languageConfig{Languages: []string{c.language}}
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return Job{}, fmt.Errorf("gladia: encode submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath("pre-recorded").String(), bytes.NewReader(payload))
	if err != nil {
		return Job{}, fmt.Errorf("gladia: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Job{}, fmt.Errorf("%w: submit request: %w", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Job{}, statusError(resp, ErrTranscriptionFailed, "submit")
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return Job{}, fmt.Errorf("%w: decode submit response: %w", ErrTranscriptionFailed, err)
	}
	if strings.TrimSpace(job.ID) == "" {
		return Job{}, fmt.Errorf("%w: submit response missing id", ErrTranscriptionFailed)
	}
	return job, nil
}

// Result fetches the current state of a job.
func (c *Client) Result(ctx context.Context, id string) (Result, error) {
	if c == nil {
		return Result{}, errors.New("gladia: client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, fmt.Errorf("%w: job id is required", ErrTranscriptionFailed)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath("pre-recorded", id).String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("gladia: build result request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("gladia: result request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Result{}, statusError(resp, ErrTranscriptionFailed, "fetch result")
	}

	var payload resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("%w: decode result response: %w", ErrTranscriptionFailed, err)
	}
	out := Result{ID: payload.ID, Status: strings.ToLower(strings.TrimSpace(payload.Status)), ErrorCode: payload.ErrorCode}
	if out.ID == "" {
		out.ID = id
	}
	if payload.Result != nil && payload.Result.Transcription != nil {
		out.Transcript = payload.Result.Transcription.FullTranscript
		out.Utterances = payload.Result.Transcription.Utterances
	}
	return out, nil
}

// Poll fetches a job until it finishes. Pending jobs and retriable fetch
// errors consume one attempt each and wait one interval before the next.
func (c *Client) Poll(ctx context.Context, id string) (Result, error) {
	if c == nil {
		return Result{}, errors.New("gladia: client is nil")
	}
	var last Result
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.Result(ctx, id)
		switch {
		case err != nil && !IsRetriable(err):
			return Result{}, err
		case err != nil:
			lastErr = err
		case result.Done():
			if result.Utterances == nil {
				return Result{}, fmt.Errorf("%w: job %s finished without utterances", ErrTranscriptionFailed, id)
			}
			return result, nil
		case result.Pending():
			last = result
			lastErr = nil
		default:
			return Result{}, fmt.Errorf("%w: job %s ended with status %q (code %d)", ErrTranscriptionFailed, id, result.Status, result.ErrorCode)
		}
		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return Result{}, err
		}
	}
	if lastErr != nil {
		return Result{}, fmt.Errorf("%w: job %s after %d attempts: %w", ErrPollingExhausted, id, c.maxAttempts, lastErr)
	}
	return Result{}, fmt.Errorf("%w: job %s still %s after %d attempts", ErrPollingExhausted, id, last.Status, c.maxAttempts)
}

// Transcribe uploads audio, submits it, and waits for the utterances.
func (c *Client) Transcribe(ctx context.Context, path string) (Result, error) {
	audioURL, err := c.UploadFile(ctx, path)
	if err != nil {
		return Result{}, err
	}
	job, err := c.Submit(ctx, audioURL)
	if err != nil {
		return Result{}, err
	}
	return c.Poll(ctx, job.ID)
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func audioPartHeader(name string) textproto.MIMEHeader {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		name = "audio"
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "audio",
		"filename": name,
	}))
	header.Set("Content-Type", contentType)
	return header
}

type uploadResponse struct {
	AudioURL string `json:"audio_url"`
}

type languageConfig struct {
	Languages     []string `json:"languages"`
	CodeSwitching bool     `json:"code_switching"`
}

type submitRequest struct {
	AudioURL       string          `json:"audio_url"`
	LanguageConfig *languageConfig `json:"language_config,omitempty"`
}

type resultResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ErrorCode int    `json:"error_code"`
	Result    *struct {
		Transcription *transcript.Transcription `json:"transcription"`
	} `json:"result"`
}
