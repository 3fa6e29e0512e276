package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pronounce/internal/config"
	"pronounce/internal/evaluation"
	"pronounce/internal/fileutil"
	"pronounce/internal/report"
	"pronounce/internal/services"
)

// referenceFlags selects the reference text for evaluate and assess.
type referenceFlags struct {
	name string
	text string
	file string
}

func (f *referenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "reference", "r", "", "Name of a catalog reference (see 'pronounce references list')")
	cmd.Flags().StringVar(&f.text, "text", "", "Reference text given inline")
	cmd.Flags().StringVar(&f.file, "reference-file", "", "Read the reference text from a file")
	cmd.MarkFlagsMutuallyExclusive("reference", "text", "reference-file")
	cmd.MarkFlagsOneRequired("reference", "text", "reference-file")
}

// resolve returns the reference text and a short label for titles and logs.
func (f *referenceFlags) resolve(ctx *commandContext) (string, string, error) {
	switch {
	case strings.TrimSpace(f.name) != "":
		catalog, err := ctx.catalog()
		if err != nil {
			return "", "", err
		}
		ref, err := catalog.Lookup(f.name)
		if err != nil {
			return "", "", err
		}
		return ref.Text, ref.Name, nil
	case strings.TrimSpace(f.file) != "":
		path, err := config.ExpandPath(f.file)
		if err != nil {
			return "", "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("read reference file: %w", err)
		}
		return string(data), filepath.Base(path), nil
	default:
		return f.text, "inline text", nil
	}
}

// outputFlags control report rendering.
type outputFlags struct {
	format string
	output string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Report format: table, csv, or json (default from output.format)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to this file or directory instead of stdout")
}

func (f *outputFlags) resolveFormat(cfg *config.Config) (report.Format, error) {
	value := f.format
	if strings.TrimSpace(value) == "" {
		value = cfg.Output.Format
	}
	return report.ParseFormat(value)
}

// thresholdFlags override the [evaluation] confidence thresholds.
type thresholdFlags struct {
	low     float64
	veryLow float64
}

func (f *thresholdFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.low, "low-confidence", evaluation.DefaultLowConfidence, "Confidence below which exact matches are reported as unclear")
	cmd.Flags().Float64Var(&f.veryLow, "very-low-confidence", evaluation.DefaultVeryLowConfidence, "Confidence below which substitutions are reported as severe")
}

func (f *thresholdFlags) apply(cmd *cobra.Command, opts evaluation.Options) (evaluation.Options, error) {
	if cmd.Flags().Changed("low-confidence") {
		opts.LowConfidence = f.low
	}
	if cmd.Flags().Changed("very-low-confidence") {
		opts.VeryLowConfidence = f.veryLow
	}
	for name, v := range map[string]float64{"low-confidence": opts.LowConfidence, "very-low-confidence": opts.VeryLowConfidence} {
		if v < 0 || v > 1 {
			return opts, fmt.Errorf("%w: --%s must be between 0 and 1", services.ErrValidation, name)
		}
	}
	return opts, nil
}

// emitReport renders rep to stdout, or atomically to target. A CSV report
// aimed at an existing directory lands in output.csv_name inside it.
func emitReport(cmd *cobra.Command, cfg *config.Config, format report.Format, target string, rep evaluation.Report, title string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		out := cmd.OutOrStdout()
		return report.Write(out, format, rep, report.Options{
			Title:   title,
			Color:   report.ShouldColorize(out),
			Summary: true,
		})
	}

	path, err := config.ExpandPath(target)
	if err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if format != report.FormatCSV {
			return fmt.Errorf("%w: --output %s is a directory", services.ErrValidation, path)
		}
		path = filepath.Join(path, cfg.Output.CSVName)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep, report.Options{Title: title, Summary: true}); err != nil {
		return err
	}
	if err := writeFile(path, &buf); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report to %s\n", format, path)
	return nil
}

func writeFile(path string, r io.Reader) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if _, err := fileutil.WriteStream(path, r, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
