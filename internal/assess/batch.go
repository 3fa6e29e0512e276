package assess

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pronounce/internal/evaluation"
	"pronounce/internal/transcript"
)

// FileReport is the evaluation of one saved transcript.
type FileReport struct {
	Path   string
	Report evaluation.Report
}

// EvaluateFiles scores saved transcripts against one reference. Files are
// decoded and evaluated concurrently, at most limit at a time (GOMAXPROCS when
// limit <= 0); reports keep the order of paths. The first failure cancels the
// remaining work and is returned with its path.
func EvaluateFiles(ctx context.Context, reference string, paths []string, opts evaluation.Options, limit int) ([]FileReport, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	reports := make([]FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			utterances, err := transcript.DecodeFile(path)
			if err != nil {
				return err
			}
			report, err := evaluation.Evaluate(reference, utterances, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = FileReport{Path: path, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
