package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pronounce/internal/assess"
	"pronounce/internal/config"
	"pronounce/internal/evaluation"
	"pronounce/internal/logging"
	"pronounce/internal/report"
	"pronounce/internal/services"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var transcripts []string
	var concurrency int
	var ref referenceFlags
	var out outputFlags
	var thresholds thresholdFlags

	cmd := &cobra.Command{
		Use:   "evaluate [TRANSCRIPT...]",
		Short: "Score saved provider transcripts against a reference",
		Long: "Score one or more saved transcripts. Each file may hold a bare utterance array,\n" +
			"an object with an \"utterances\" key, or a complete Gladia result document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := append(append([]string(nil), transcripts...), args...)
			if len(paths) == 0 {
				return fmt.Errorf("%w: at least one --transcript is required", services.ErrValidation)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
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
			for i, p := range paths {
				if paths[i], err = config.ExpandPath(p); err != nil {
					return err
				}
			}

			reports, err := assess.EvaluateFiles(cmd.Context(), reference, paths, opts, concurrency)
			if err != nil {
				return err
			}
			for _, r := range reports {
				logging.NewComponentLogger(logger, "evaluate").Debug("transcript scored",
					logging.String(logging.FieldTranscript, r.Path),
					logging.String(logging.FieldReference, label),
					logging.Int(logging.FieldRows, len(r.Report.Rows)),
					logging.Float64(logging.FieldWER, r.Report.Summary.WER),
				)
			}
			return emitFileReports(cmd, cfg, format, out.output, reports, label)
		},
	}

	cmd.Flags().StringArrayVarP(&transcripts, "transcript", "t", nil, "Saved transcript JSON file (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Transcripts scored in parallel (default GOMAXPROCS)")
	ref.register(cmd)
	out.register(cmd)
	thresholds.register(cmd)
	return cmd
}

type fileReport struct {
	Path   string            `json:"path"`
	Report evaluation.Report `json:"report"`
}

func emitFileReports(cmd *cobra.Command, cfg *config.Config, format report.Format, target string, reports []assess.FileReport, label string) error {
	if len(reports) == 1 {
		return emitReport(cmd, cfg, format, target, reports[0].Report, reportTitle(reports[0].Path, label))
	}

	switch format {
	case report.FormatJSON:
		items := make([]fileReport, len(reports))
		for i, r := range reports {
			items[i] = fileReport{Path: r.Path, Report: r.Report}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return err
		}
		if strings.TrimSpace(target) == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		path, err := config.ExpandPath(target)
		if err != nil {
			return err
		}
		return writeFile(path, &buf)
	case report.FormatCSV:
		errNeedDir := fmt.Errorf("%w: CSV output for several transcripts needs --output DIR (one file per transcript)", services.ErrValidation)
		if strings.TrimSpace(target) == "" {
			return errNeedDir
		}
		dir, err := config.ExpandPath(target)
		if err != nil {
			return err
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return errNeedDir
		}
		for _, r := range reports {
			stem := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
			if err := emitReport(cmd, cfg, format, filepath.Join(dir, stem+".csv"), r.Report, ""); err != nil {
				return err
			}
		}
		return nil
	default:
		if strings.TrimSpace(target) != "" {
			return fmt.Errorf("%w: table output for several transcripts is written to stdout; use --format json or csv with --output", services.ErrValidation)
		}
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err := emitReport(cmd, cfg, format, "", r.Report, reportTitle(r.Path, label)); err != nil {
				return err
			}
		}
		return nil
	}
}

func reportTitle(path, label string) string {
	name := filepath.Base(path)
	if label == "" {
		return name
	}
	return name + " vs " + label
}
