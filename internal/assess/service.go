package assess

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"pronounce/internal/audio"
	"pronounce/internal/evaluation"
	"pronounce/internal/gladia"
	"pronounce/internal/logging"
	"pronounce/internal/services"
	"pronounce/internal/transcript"
	"pronounce/internal/transcriptcache"
)

const (
	lockRetryDelay = 250 * time.Millisecond
	providerName   = "gladia"

	referenceLabelLimit = 40
)

// Transcriber turns a staged recording into provider utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (gladia.Result, error)
}

// Cache stores provider output keyed by audio hash and language.
type Cache interface {
	Lookup(ctx context.Context, audioSHA256, language string) (*transcriptcache.Entry, error)
	Put(ctx context.Context, entry transcriptcache.Entry) error
}

// Options wires a Service.
type Options struct {
	Stager     *audio.Stager
	Provider   Transcriber
	Cache      Cache // nil disables caching
	CacheTTL   time.Duration
	LockDir    string
	Language   string
	Evaluation evaluation.Options
	Logger     *slog.Logger
}

// Service evaluates recordings against reference text.
type Service struct {
	stager   *audio.Stager
	provider Transcriber
	cache    Cache
	cacheTTL time.Duration
	lockDir  string
	language string
	options  evaluation.Options
	logger   *slog.Logger
	now      func() time.Time
}

// New validates opts and builds a Service.
func New(opts Options) (*Service, error) {
	if opts.Stager == nil {
		return nil, fmt.Errorf("%w: assess: stager is required", services.ErrConfiguration)
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: assess: transcription provider is required", services.ErrConfiguration)
	}
	lockDir := strings.TrimSpace(opts.LockDir)
	if lockDir == "" {
		lockDir = filepath.Join(opts.Stager.Dir(), "locks")
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Service{
		stager:   opts.Stager,
		provider: opts.Provider,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		lockDir:  lockDir,
		language: strings.TrimSpace(opts.Language),
		options:  opts.Evaluation,
		logger:   logging.NewComponentLogger(opts.Logger, "assess"),
		now:      time.Now,
	}, nil
}

// Request describes one assessment.
type Request struct {
	AudioPath string
	Reference string
	// ReferenceName labels the prompt in logs when it came from the catalog.
	ReferenceName string
	// NoCache skips the cache lookup; fresh output is still stored.
	NoCache bool
}

// Outcome is a finished assessment.
type Outcome struct {
	RequestID   string
	AudioSHA256 string
	JobID       string
	CacheHit    bool
	Utterances  []transcript.Utterance
	Report      evaluation.Report
}

// Assess stages the recording, obtains its transcript from the cache or the
// provider, and evaluates it against the reference.
func (s *Service) Assess(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Outcome{}, fmt.Errorf("%w: audio path is required", services.ErrValidation)
	}
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	out := Outcome{RequestID: requestID}

	stageCtx := services.WithStage(ctx, "stage")
	staged, err := s.stager.StageFile(req.AudioPath)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return out, services.Wrap(marker, "stage", "copy audio", req.AudioPath, err)
	}
	defer func() {
		if err := s.stager.Remove(staged); err != nil {
			logging.WarnWithContext(logging.WithContext(stageCtx, s.logger), "staged audio not removed", "staging_cleanup_failed",
				logging.String("staged_path", staged.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "staging directory keeps a stale copy"),
			)
		}
	}()
	out.AudioSHA256 = staged.SHA256
	logging.WithContext(stageCtx, s.logger).Info("audio staged",
		logging.String(logging.FieldAudio, filepath.Base(req.AudioPath)),
		logging.String(logging.FieldAudioSHA256, staged.SHA256),
		logging.Int64("size_bytes", staged.Size),
	)

	unlock, err := s.lock(ctx, staged.SHA256)
	if err != nil {
		return out, err
	}
	defer unlock()

	utterances, jobID, hit, err := s.transcribe(ctx, staged, req.NoCache)
	if err != nil {
		return out, err
	}
	out.Utterances = utterances
	out.JobID = jobID
	out.CacheHit = hit

	evalCtx := services.WithStage(ctx, "evaluate")
	report, err := evaluation.Evaluate(req.Reference, utterances, s.options)
	if err != nil {
		return out, services.Wrap(services.ErrValidation, "evaluate", "score transcript", "", err)
	}
	out.Report = report
	logging.WithContext(evalCtx, s.logger).Info("assessment complete",
		logging.String(logging.FieldReference, referenceLabel(req)),
		logging.Int(logging.FieldRows, len(report.Rows)),
		logging.Float64(logging.FieldWER, report.Summary.WER),
		logging.Float64("accuracy", report.Summary.Accuracy),
	)
	return out, nil
}

func (s *Service) lock(ctx context.Context, sha string) (func(), error) {
	path := filepath.Join(s.lockDir, sha+".lock")
	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "stage", "lock recording", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "stage", "lock recording", path+" is held by another assessment", nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Debug("lock release failed", logging.String("lock_path", path), logging.Error(err))
		}
	}, nil
}

func (s *Service) transcribe(ctx context.Context, staged audio.Staged, skipLookup bool) ([]transcript.Utterance, string, bool, error) {
	cacheCtx := services.WithStage(ctx, "cache")
	if s.cache != nil && !skipLookup {
		entry, err := s.cache.Lookup(cacheCtx, staged.SHA256, s.language)
		switch {
		case err != nil:
			logging.WarnWithContext(logging.WithContext(cacheCtx, s.logger), "transcript cache lookup failed", "cache_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "recording is transcribed again"),
			)
		case entry != nil && s.fresh(entry):
			logging.WithContext(cacheCtx, s.logger).Info("transcript served from cache",
				logging.Bool(logging.FieldCacheHit, true),
				logging.String(logging.FieldJobID, entry.JobID),
			)
			return entry.Utterances, entry.JobID, true, nil
		}
	}

	providerCtx := services.WithStage(ctx, "transcribe")
	logger := logging.WithContext(providerCtx, s.logger)
	started := s.now()
	result, err := s.provider.Transcribe(providerCtx, staged.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, "", false, err
		}
		logging.ErrorWithContext(logger, "transcription failed", "transcription_"+services.FailureKind(err),
			logging.Error(err),
		)
		return nil, "", false, services.Wrap(services.ErrExternal, "transcribe", providerName, "", err)
	}
	logger.Info("transcript received",
		logging.String(logging.FieldJobID, result.ID),
		logging.Bool(logging.FieldCacheHit, false),
		logging.Duration("elapsed", s.now().Sub(started)),
	)

	if s.cache != nil {
		entry := transcriptcache.Entry{
			AudioSHA256: staged.SHA256,
			Language:    s.language,
			Provider:    providerName,
			JobID:       result.ID,
			Source:      filepath.Base(staged.Source),
			AudioBytes:  staged.Size,
			Utterances:  result.Utterances,
		}
		if err := s.cache.Put(cacheCtx, entry); err != nil {
			logging.WarnWithContext(logging.WithContext(cacheCtx, s.logger), "transcript not cached", "cache_store_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next assessment of this recording calls the provider again"),
			)
		}
	}
	return result.Utterances, result.ID, false, nil
}

func (s *Service) fresh(entry *transcriptcache.Entry) bool {
	if s.cacheTTL <= 0 || entry.CreatedAt.IsZero() {
		return true
	}
	return s.now().Sub(entry.CreatedAt) <= s.cacheTTL
}

func referenceLabel(req Request) string {
	if name := strings.TrimSpace(req.ReferenceName); name != "" {
		return name
	}
	text := strings.TrimSpace(req.Reference)
	if runes := []rune(text); len(runes) > referenceLabelLimit {
		text = string(runes[:referenceLabelLimit]) + "…"
	}
	return text
}
