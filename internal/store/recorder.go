package store

import (
	"context"

	"github.com/danielpatrickdp/diffanalysis/internal/compare"
)

// #region recorder
// Recorder persists comparison progress under one run.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder returns an observer writing into run runID.
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// ObserveRun stores the raw output of one diff invocation.
func (r *Recorder) ObserveRun(ctx context.Context, run compare.RunPairResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.store.SaveDiffOutput(DiffOutput{
		RunID:        r.runID,
		PairKey:      compare.PairKey(run.Baseline, run.Candidate),
		Artifact:     string(run.Artifact),
		BaselineRep:  run.BaselineRep,
		CandidateRep: run.CandidateRep,
		ExitCode:     run.Code,
		Output:       run.Output,
		Categories:   run.Result,
	})
	return err
}

// ObservePair stores the verdict for a finished pair.
func (r *Recorder) ObservePair(ctx context.Context, baseline, candidate string, rec compare.ComparisonRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.SaveRecord(PairRecord{
		RunID:     r.runID,
		PairKey:   compare.PairKey(baseline, candidate),
		Baseline:  baseline,
		Candidate: candidate,
		MinDiff:   rec.MinDiff,
		AllDiffs:  rec.AllDiffs,
		SameLog:   rec.LogResolved,
		SameWatch: rec.WatchResolved,
	})
}

var _ compare.Observer = (*Recorder)(nil)
// #endregion recorder
