// Package compare runs repeated log comparisons between commits and keeps the
// smallest diagnosis per commit pair.
package compare

import (
	"context"
	"log/slog"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
	"github.com/danielpatrickdp/diffanalysis/internal/differ"
)

// #region comparator

// Comparator compares the repetitions of one commit pair.
type Comparator struct {
	differ     differ.Differ
	classifier *diagnose.Classifier
	layout     Layout
	opts       Options
	observer   Observer
	logger     *slog.Logger
}

// NewComparator creates a comparator reading files laid out by layout.
func NewComparator(d differ.Differ, layout Layout, opts Options, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Comparator{
		differ:     d,
		classifier: diagnose.NewClassifier(diagnose.DefaultRules()),
		layout:     layout,
		opts:       opts,
		logger:     logger,
	}
}

// WithObserver sets the observer notified of every diff outcome.
func (c *Comparator) WithObserver(o Observer) *Comparator {
	c.observer = o
	return c
}

// WithClassifier replaces the default rule table.
func (c *Comparator) WithClassifier(cl *diagnose.Classifier) *Comparator {
	c.classifier = cl
	return c
}

// #endregion comparator

// #region compare

// pairState tracks one commit pair while its repetitions are compared.
type pairState struct {
	baseline  string
	candidate string
	rec       ComparisonRecord
	log       *slog.Logger
}

// Compare diffs every (candidate rep, baseline rep) combination, candidate
// outer, until both the execution log and the watch log have an identical
// combination or the combinations run out. Failed diff invocations are
// logged and skipped.
func (c *Comparator) Compare(ctx context.Context, baseline, candidate string) ComparisonRecord {
	log := c.logger.With("baseline", baseline, "candidate", candidate)
	st := &pairState{
		baseline:  baseline,
		candidate: candidate,
		rec:       ComparisonRecord{AllDiffs: []diagnose.DiffResult{}},
		log:       log,
	}

	reps := c.opts.Reps
	if reps <= 0 {
		n, err := c.layout.DetectReps(candidate)
		if err != nil {
			log.Error("detect repetitions", "error", err)
		}
		reps = n
		log.Debug("detected repetitions", "reps", reps)
	}
	if reps == 0 {
		log.Warn("no repetitions to compare")
	}

	for i := 0; i < reps; i++ {
		for j := 0; j < reps; j++ {
			if st.rec.SameBehaviour() {
				return st.rec
			}
			if ctx.Err() != nil {
				log.Warn("comparison interrupted", "error", ctx.Err())
				return st.rec
			}
			if !st.rec.LogResolved {
				c.compareLog(ctx, st, i, j)
			}
			if !st.rec.WatchResolved {
				c.compareWatch(ctx, st, i, j)
			}
		}
	}
	return st.rec
}

func (c *Comparator) diff(ctx context.Context, st *pairState, a Artifact, i, j int) (RunPairResult, differ.Result) {
	file1 := c.layout.Path(a, st.candidate, st.baseline, j)
	file2 := c.layout.Path(a, st.candidate, st.candidate, i)
	res := c.differ.Diff(ctx, file1, file2)

	run := RunPairResult{
		Baseline:      st.baseline,
		Candidate:     st.candidate,
		Artifact:      a,
		BaselineRep:   j,
		CandidateRep:  i,
		BaselineFile:  file1,
		CandidateFile: file2,
		Code:          res.Code,
		Output:        string(res.Stdout),
	}
	switch {
	case res.Same():
		st.log.Info("no difference", "artifact", a, "file1", file1, "file2", file2)
	case res.Code == differ.CodeCancelled:
		st.log.Debug("diff cancelled", "artifact", a)
	case res.Failed():
		st.log.Warn("diff failed", "artifact", a, "file1", file1, "file2", file2,
			"code", res.Code, "stderr", string(res.Stderr))
		run.Output = string(res.Stderr)
	}
	return run, res
}

func (c *Comparator) compareLog(ctx context.Context, st *pairState, i, j int) {
	run, res := c.diff(ctx, st, ArtifactLog, i, j)
	if ctx.Err() != nil {
		return
	}
	defer func() { c.observeRun(ctx, run) }()

	switch {
	case res.Same():
		st.rec.LogResolved = true
		st.rec.MinDiff = diagnose.DiffResult{}
		run.Result = diagnose.DiffResult{}
	case res.Failed(), !c.opts.Diagnose:
		return
	default:
		cur := c.classifier.Diagnose(string(res.Stdout))
		run.Result = cur
		st.rec.AllDiffs = append(st.rec.AllDiffs, cur)
		if st.rec.MinDiff == nil || len(cur) < len(st.rec.MinDiff) {
			st.rec.MinDiff = cur
		}
		if len(cur) == 0 {
			st.log.Info("no meaningful difference", "artifact", ArtifactLog,
				"baseline_rep", j, "candidate_rep", i)
			st.rec.LogResolved = true
		}
	}
}

func (c *Comparator) compareWatch(ctx context.Context, st *pairState, i, j int) {
	run, res := c.diff(ctx, st, ArtifactWatch, i, j)
	if ctx.Err() != nil {
		return
	}
	if res.Same() {
		st.rec.WatchResolved = true
	}
	c.observeRun(ctx, run)
}

func (c *Comparator) observeRun(ctx context.Context, run RunPairResult) {
	if c.observer == nil {
		return
	}
	if err := c.observer.ObserveRun(ctx, run); err != nil {
		c.logger.Error("record diff outcome", "error", err)
	}
}

// #endregion compare
