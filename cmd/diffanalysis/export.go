package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/diffanalysis/internal/compare"
	"github.com/danielpatrickdp/diffanalysis/internal/differ"
	"github.com/danielpatrickdp/diffanalysis/internal/replay"
	"github.com/danielpatrickdp/diffanalysis/internal/store"
)

// #region command

func newExportFixtureCmd(a *app) *cobra.Command {
	var (
		dbPath, runID, outPath string
		last                   int
	)
	cmd := &cobra.Command{
		Use:   "export-fixture --out path/to/fixture.json",
		Short: "Export the diagnosed log diffs of a recorded run as a replay fixture",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return usageError(fmt.Errorf("--out is required"))
			}
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := buildFixture(st, runID, last)
			if err != nil {
				return err
			}
			if err := replay.WriteFixture(f, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cases to %s\n", len(f.Cases), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (defaults to the configured one)")
	cmd.Flags().StringVar(&runID, "run", "", "run to export (defaults to the most recent)")
	cmd.Flags().IntVar(&last, "last", 20, "number of most recent diff outputs to consider (0 for all)")
	cmd.Flags().StringVar(&outPath, "out", "", "output fixture JSON path")
	return cmd
}

// #endregion command

// #region extract

// buildFixture keeps the diagnosed execution-log outputs among the run's
// last diff outputs, oldest first.
func buildFixture(st *store.Store, runID string, last int) (replay.Fixture, error) {
	if runID == "" {
		runs, err := st.ListRuns(1)
		if err != nil {
			return replay.Fixture{}, err
		}
		if len(runs) == 0 {
			return replay.Fixture{}, fmt.Errorf("no runs recorded")
		}
		runID = runs[0].RunID
	}

	outs, err := st.ListDiffOutputs(runID, last)
	if err != nil {
		return replay.Fixture{}, err
	}

	var cases []replay.FixtureCase
	for _, o := range outs {
		if o.Artifact != string(compare.ArtifactLog) || o.ExitCode != differ.CodeDiffer || o.Categories == nil {
			continue
		}
		cases = append(cases, replay.FixtureCase{
			ID:       fmt.Sprintf("%s/%d", o.PairKey, o.ID),
			Output:   o.Output,
			Expected: o.Categories.Strings(),
		})
	}
	if len(cases) == 0 {
		return replay.Fixture{}, fmt.Errorf("no diagnosed log diffs in the last %d outputs of run %s", last, runID)
	}

	return replay.Fixture{
		Description: fmt.Sprintf("Export of run %s: %d diagnosed log diffs", runID, len(cases)),
		Cases:       cases,
	}, nil
}

// #endregion extract
