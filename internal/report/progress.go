package report

import (
	"context"
	"fmt"
	"io"

	"github.com/danielpatrickdp/diffanalysis/internal/compare"
)

// #region progress

// Progress writes a human-readable account of a comparison as it happens.
// It is a compare.Observer; write errors are returned to the comparator,
// which logs them.
type Progress struct {
	w        io.Writer
	diagnose bool
	current  string
}

// NewProgress returns a progress writer. With diagnose set, every pair's
// min diff is printed after its verdict.
func NewProgress(w io.Writer, diagnose bool) *Progress {
	return &Progress{w: w, diagnose: diagnose}
}

func (p *Progress) start(baseline, candidate string) error {
	key := compare.PairKey(baseline, candidate)
	if p.current == key {
		return nil
	}
	p.current = key
	_, err := fmt.Fprintf(p.w, "\nComparing commit: %s to %s\n", candidate, baseline)
	return err
}

// ObserveRun reports combinations that showed no difference.
func (p *Progress) ObserveRun(_ context.Context, r compare.RunPairResult) error {
	if err := p.start(r.Baseline, r.Candidate); err != nil {
		return err
	}
	if r.Code != 0 && (r.Result == nil || len(r.Result) > 0) {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "\nno difference: %s --- %s\n", r.CandidateFile, r.BaselineFile)
	return err
}

// ObservePair reports the verdict for a pair.
func (p *Progress) ObservePair(_ context.Context, baseline, candidate string, rec compare.ComparisonRecord) error {
	if err := p.start(baseline, candidate); err != nil {
		return err
	}
	var err error
	if rec.SameBehaviour() {
		_, err = fmt.Fprintf(p.w, "\nSame behaviour between commits %s and commit %s\n", candidate, baseline)
	} else {
		_, err = fmt.Fprintf(p.w, "\nBehavioural diff between commit %s and commit %s\n", candidate, baseline)
	}
	if err != nil || !p.diagnose {
		return err
	}
	_, err = fmt.Fprintf(p.w, "\nMin diff:\n%s\n", FormatDiff(rec.MinDiff))
	return err
}

var _ compare.Observer = (*Progress)(nil)

// #endregion progress
