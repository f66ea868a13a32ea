package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/diffanalysis/internal/replay"
	"github.com/danielpatrickdp/diffanalysis/internal/report"
)

// #region command

func newReplayCmd(a *app) *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "replay --fixture path/to/fixture.json",
		Short: "Re-diagnose recorded diff outputs and compare with their expected results",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fixturePath == "" {
				return usageError(fmt.Errorf("--fixture is required"))
			}
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			a.log.Debug("loaded fixture", "path", fixturePath, "cases", len(f.Cases))

			results := replay.Replay(f.Cases, nil)
			if diverged := printComparison(cmd.OutOrStdout(), results); diverged > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to fixture JSON")
	return cmd
}

// #endregion command

// #region output

// printComparison outputs a comparison table and returns the number of
// diverging cases.
func printComparison(w io.Writer, results []replay.ReplayResult) int {
	fmt.Fprintf(w, "%-24s| %-40s| %-40s| %s\n", "Case", "Expected", "Replayed", "Match")
	fmt.Fprintf(w, "%-24s+%-41s+%-41s+%s\n",
		"------------------------", "-----------------------------------------", "-----------------------------------------", "------")

	for _, r := range results {
		match := "DIFF"
		if r.Match {
			match = "OK"
		}
		fmt.Fprintf(w, "%-24s| %-40s| %-40s| %s\n", r.ID, report.FormatDiff(r.Expected), report.FormatDiff(r.Got), match)
	}

	s := replay.Summarize(results)
	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge\n", s.Total, s.Matches, s.Diverged)
	for _, c := range slices.Sorted(maps.Keys(s.Categories)) {
		fmt.Fprintf(w, "  %-40s %d\n", c, s.Categories[c])
	}
	return s.Diverged
}

// #endregion output
