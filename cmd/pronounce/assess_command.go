package main

import (
	"bytes"
	"net/http"

	"github.com/spf13/cobra"

	"pronounce/internal/assess"
	"pronounce/internal/audio"
	"pronounce/internal/config"
	"pronounce/internal/gladia"
	"pronounce/internal/logging"
	"pronounce/internal/transcript"
)

func newAssessCommand(ctx *commandContext) *cobra.Command {
	var noCache bool
	var saveTranscript string
	var ref referenceFlags
	var out outputFlags
	var thresholds thresholdFlags

	cmd := &cobra.Command{
		Use:   "assess AUDIO",
		Short: "Transcribe a recording with Gladia and score it against a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireGladia(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			format, err := out.resolveFormat(cfg)
			if err != nil {
				return err
			}
			opts, err := thresholds.apply(cmd, cfg.EvaluationOptions())
			if err != nil {
				return err
			}
			reference, label, err := ref.resolve(ctx)
			if err != nil {
				return err
			}
			audioPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			client, err := gladia.New(gladia.Config{
				APIKey:          cfg.Gladia.APIKey,
				BaseURL:         cfg.Gladia.BaseURL,
				Language:        cfg.Gladia.Language,
				PollInterval:    cfg.PollInterval(),
				MaxPollAttempts: cfg.Gladia.MaxPollAttempts,
				HTTPClient:      &http.Client{Timeout: cfg.RequestTimeout()},
			})
			if err != nil {
				return err
			}
			stager, err := audio.NewStager(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}

			svcOpts := assess.Options{
				Stager:     stager,
				Provider:   client,
				CacheTTL:   cfg.CacheMaxAge(),
				LockDir:    cfg.LockDir(),
				Language:   cfg.Gladia.Language,
				Evaluation: opts,
				Logger:     logger,
			}
			if cfg.Cache.Enabled {
				store, err := ctx.openCache()
				if err != nil {
					logging.WarnWithContext(logger, "transcript cache unavailable", "cache_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "recording is sent to the provider without caching"),
					)
				} else {
					defer store.Close()
					svcOpts.Cache = store
				}
			}
			svc, err := assess.New(svcOpts)
			if err != nil {
				return err
			}

			outcome, err := svc.Assess(cmd.Context(), assess.Request{
				AudioPath:     audioPath,
				Reference:     reference,
				ReferenceName: label,
				NoCache:       noCache,
			})
			if err != nil {
				return err
			}

			if saveTranscript != "" {
				if err := saveUtterances(saveTranscript, outcome.Utterances); err != nil {
					return err
				}
			}
			return emitReport(cmd, cfg, format, out.output, outcome.Report, reportTitle(audioPath, label))
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached transcripts and call the provider")
	cmd.Flags().StringVar(&saveTranscript, "save-transcript", "", "Also write the provider utterances to this JSON file")
	ref.register(cmd)
	out.register(cmd)
	thresholds.register(cmd)
	return cmd
}

func saveUtterances(target string, utterances []transcript.Utterance) error {
	path, err := config.ExpandPath(target)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := transcript.Encode(&buf, utterances); err != nil {
		return err
	}
	return writeFile(path, &buf)
}
