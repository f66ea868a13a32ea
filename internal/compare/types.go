package compare

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region options

// Options controls a comparison.
type Options struct {
	// Reps is the number of repetitions per commit. Zero or less means
	// detect it from the candidate's files.
	Reps int
	// Diagnose enables classification of log differences. Without it a
	// comparison only tells whether some repetition pair was identical.
	Diagnose bool
}

// #endregion options

// #region records

// RunPairResult is the outcome of one diff invocation for a repetition pair.
type RunPairResult struct {
	Baseline     string
	Candidate    string
	Artifact     Artifact
	BaselineRep  int
	CandidateRep int
	// BaselineFile and CandidateFile are the diff arguments, in order.
	BaselineFile  string
	CandidateFile string
	Code          int
	Output        string
	// Result is nil unless the output was diagnosed.
	Result diagnose.DiffResult
}

// ComparisonRecord is the verdict for one (baseline, candidate) pair.
type ComparisonRecord struct {
	// MinDiff is the diagnosis with the fewest categories. It is empty once a
	// repetition pair showed no meaningful log difference and nil when
	// nothing was diagnosed.
	MinDiff  diagnose.DiffResult   `json:"min_diff" yaml:"min_diff"`
	AllDiffs []diagnose.DiffResult `json:"all_diffs" yaml:"all_diffs"`

	LogResolved   bool `json:"-" yaml:"-"`
	WatchResolved bool `json:"-" yaml:"-"`
}

// SameBehaviour reports whether both artifacts had an identical repetition pair.
func (r ComparisonRecord) SameBehaviour() bool {
	return r.LogResolved && r.WatchResolved
}

// #endregion records

// #region observer

// Observer receives comparison progress, e.g. to persist it.
type Observer interface {
	ObserveRun(ctx context.Context, r RunPairResult) error
	ObservePair(ctx context.Context, baseline, candidate string, rec ComparisonRecord) error
}

// Observers fans every event out to each observer in order. All observers
// see every event; the errors are joined.
type Observers []Observer

func (obs Observers) ObserveRun(ctx context.Context, r RunPairResult) error {
	var errs []error
	for _, o := range obs {
		if err := o.ObserveRun(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (obs Observers) ObservePair(ctx context.Context, baseline, candidate string, rec ComparisonRecord) error {
	var errs []error
	for _, o := range obs {
		if err := o.ObservePair(ctx, baseline, candidate, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// #endregion observer

// #region results

// PairKey is the results key for a pair: "<candidate>_<baseline>".
func PairKey(baseline, candidate string) string {
	return candidate + "_" + baseline
}

// Pair names the two commits of one comparison.
type Pair struct {
	Key       string
	Baseline  string
	Candidate string
}

// Results maps pair keys to records, remembering comparison order.
type Results struct {
	Pairs   []Pair
	Records map[string]ComparisonRecord
	// Reps is the repetition count the comparison used, after detection.
	Reps int
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{Records: make(map[string]ComparisonRecord)}
}

// Add stores rec for the pair.
func (r *Results) Add(baseline, candidate string, rec ComparisonRecord) {
	key := PairKey(baseline, candidate)
	if _, ok := r.Records[key]; !ok {
		r.Pairs = append(r.Pairs, Pair{Key: key, Baseline: baseline, Candidate: candidate})
	}
	r.Records[key] = rec
}

// MinDiffs flattens the min diffs of all pairs in comparison order.
func (r *Results) MinDiffs() diagnose.DiffResult {
	out := diagnose.DiffResult{}
	for _, p := range r.Pairs {
		out = append(out, r.Records[p.Key].MinDiff...)
	}
	return out
}

// #endregion results
