// Package replay re-diagnoses recorded diff outputs and checks them against
// the diagnoses they are expected to produce.
package replay

import (
	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region types

// ReplayResult is the outcome of re-diagnosing one fixture case.
type ReplayResult struct {
	ID       string
	Expected diagnose.DiffResult
	Got      diagnose.DiffResult
	Match    bool
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total    int
	Matches  int
	Diverged int
	// Categories counts every category produced across all cases.
	Categories map[diagnose.Category]int
}

// #endregion types

// #region replay

// Replay diagnoses every case with cl, or with the default rules when cl is
// nil, in fixture order.
func Replay(cases []FixtureCase, cl *diagnose.Classifier) []ReplayResult {
	if cl == nil {
		cl = diagnose.NewClassifier(diagnose.DefaultRules())
	}
	results := make([]ReplayResult, 0, len(cases))
	for _, c := range cases {
		want := c.ExpectedResult()
		got := cl.Diagnose(c.Output)
		results = append(results, ReplayResult{
			ID:       c.ID,
			Expected: want,
			Got:      got,
			Match:    Match(want, got),
		})
	}
	return results
}

// Match reports whether a and b hold the same categories the same number
// of times. Order is ignored.
func Match(a, b diagnose.DiffResult) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[diagnose.Category]int, len(a))
	for _, c := range a {
		counts[c]++
	}
	for _, c := range b {
		counts[c]--
		if counts[c] < 0 {
			return false
		}
	}
	return true
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		Total:      len(results),
		Categories: make(map[diagnose.Category]int),
	}
	for _, r := range results {
		if r.Match {
			s.Matches++
		} else {
			s.Diverged++
		}
		for _, c := range r.Got {
			s.Categories[c]++
		}
	}
	return s
}

// #endregion replay
