package store

import (
	"time"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region run-record
// RunRecord is one invocation of the comparison driver.
type RunRecord struct {
	RunID      string
	Library    string
	Reps       int
	Diagnose   bool
	Commits    []string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running or when interrupted
}
// #endregion run-record

// #region pair-record
// PairRecord is the stored verdict for one commit pair of a run.
type PairRecord struct {
	RunID     string
	PairKey   string
	Baseline  string
	Candidate string
	MinDiff   diagnose.DiffResult // nil when nothing was diagnosed
	AllDiffs  []diagnose.DiffResult
	SameLog   bool
	SameWatch bool
	CreatedAt time.Time
}
// #endregion pair-record

// #region diff-output
// DiffOutput is the raw output of one diff invocation.
type DiffOutput struct {
	ID           int64
	RunID        string
	PairKey      string
	Artifact     string
	BaselineRep  int
	CandidateRep int
	ExitCode     int
	Output       string
	Categories   diagnose.DiffResult // nil when not diagnosed
	CreatedAt    time.Time
}
// #endregion diff-output
