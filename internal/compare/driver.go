package compare

import (
	"context"
	"fmt"
	"log/slog"
)

// #region driver

// Driver compares consecutive commits of a history, each commit acting as
// the baseline of its successor.
type Driver struct {
	cmp    *Comparator
	logger *slog.Logger
}

// NewDriver wraps a comparator.
func NewDriver(cmp *Comparator, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{cmp: cmp, logger: logger}
}

// Run compares commits[k] against commits[k+1] for every k, in order. Fewer
// than two commits yield empty results. A cancelled context stops the walk
// between pairs and returns what was compared so far with the context error.
func (d *Driver) Run(ctx context.Context, commits []string) (*Results, error) {
	res := NewResults()
	if len(commits) >= 2 && d.cmp.opts.Reps <= 0 {
		n, err := d.cmp.layout.DetectReps(commits[1])
		if err != nil {
			return res, fmt.Errorf("detect repetitions: %w", err)
		}
		d.logger.Info("detected repetitions", "reps", n, "candidate", commits[1])
		d.cmp.opts.Reps = n
	}
	res.Reps = d.cmp.opts.Reps

	for len(commits) >= 2 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		baseline, candidate := commits[0], commits[1]
		d.logger.Info("comparing commit", "candidate", candidate, "baseline", baseline)

		rec := d.cmp.Compare(ctx, baseline, candidate)
		res.Add(baseline, candidate, rec)
		if rec.SameBehaviour() {
			d.logger.Info("same behaviour", "candidate", candidate, "baseline", baseline)
		} else {
			d.logger.Info("behavioural diff", "candidate", candidate, "baseline", baseline,
				"min_diff", rec.MinDiff.Strings())
		}

		if d.cmp.observer != nil {
			if err := d.cmp.observer.ObservePair(ctx, baseline, candidate, rec); err != nil {
				d.logger.Error("record pair", "key", PairKey(baseline, candidate), "error", err)
			}
		}
		commits = commits[1:]
	}
	return res, nil
}

// #endregion driver
