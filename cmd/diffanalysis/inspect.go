package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/diffanalysis/internal/report"
	"github.com/danielpatrickdp/diffanalysis/internal/store"
)

// #region command

func newInspectCmd(a *app) *cobra.Command {
	var (
		dbPath, runID string
		last          int
		jsonOut       bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List recorded runs, or the pair records of one run",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				return runDetailMode(out, st, runID, jsonOut)
			}
			return runListMode(out, st, last, jsonOut)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (defaults to the configured one)")
	cmd.Flags().StringVar(&runID, "run", "", "show the pair records of one run")
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

func (a *app) openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		dbPath = a.cfg.DB
	}
	if dbPath == "" {
		return nil, usageError(fmt.Errorf("--db is required"))
	}
	return store.NewStore(dbPath)
}

// #endregion command

// #region list-mode

type runRow struct {
	RunID      string   `json:"run_id"`
	Library    string   `json:"library"`
	Reps       int      `json:"reps"`
	Diagnose   bool     `json:"diagnose"`
	Commits    []string `json:"commits"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at,omitempty"`
}

func runListMode(w io.Writer, st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	rows := make([]runRow, len(runs))
	for i, r := range runs {
		rows[i] = runRow{
			RunID:     r.RunID,
			Library:   r.Library,
			Reps:      r.Reps,
			Diagnose:  r.Diagnose,
			Commits:   r.Commits,
			StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
		}
		if !r.FinishedAt.IsZero() {
			rows[i].FinishedAt = r.FinishedAt.Format("2006-01-02T15:04:05Z")
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-16s  %4s  %7s  %-20s  %s\n", "Run", "Library", "Reps", "Commits", "Started", "Finished")
	fmt.Fprintf(w, "%-12s+-%-16s+-%4s+-%7s+-%-20s+-%s\n",
		"------------", "----------------", "----", "-------", "--------------------", "--------------------")
	for _, r := range rows {
		finished := "-"
		if r.FinishedAt != "" {
			finished = r.FinishedAt
		}
		fmt.Fprintf(w, "%-12s  %-16s  %4d  %7d  %-20s  %s\n",
			shortID(r.RunID), r.Library, r.Reps, len(r.Commits), r.StartedAt, finished)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type pairRow struct {
	Pair      string     `json:"pair"`
	SameLog   bool       `json:"same_log"`
	SameWatch bool       `json:"same_watch"`
	MinDiff   []string   `json:"min_diff"`
	AllDiffs  [][]string `json:"all_diffs"`
}

func runDetailMode(w io.Writer, st *store.Store, runID string, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	recs, err := st.ListRecords(runID)
	if err != nil {
		return err
	}

	rows := make([]pairRow, len(recs))
	for i, r := range recs {
		rows[i] = pairRow{Pair: r.PairKey, SameLog: r.SameLog, SameWatch: r.SameWatch}
		if r.MinDiff != nil {
			rows[i].MinDiff = r.MinDiff.Strings()
		}
		rows[i].AllDiffs = make([][]string, len(r.AllDiffs))
		for j, d := range r.AllDiffs {
			rows[i].AllDiffs[j] = d.Strings()
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "Run:      %s\n", run.RunID)
	fmt.Fprintf(w, "Library:  %s\n", run.Library)
	fmt.Fprintf(w, "Reps:     %d\n", run.Reps)
	fmt.Fprintf(w, "Started:  %s\n\n", run.StartedAt.Format("2006-01-02T15:04:05Z"))

	fmt.Fprintf(w, "%-24s| %-5s| %-5s| %s\n", "Pair", "Log", "Watch", "Min diff")
	fmt.Fprintf(w, "%-24s+%-6s+%-6s+%s\n", "------------------------", "------", "------", "--------------------")
	for _, r := range recs {
		fmt.Fprintf(w, "%-24s| %-5s| %-5s| %s\n",
			r.PairKey, sameOrDiff(r.SameLog), sameOrDiff(r.SameWatch), report.FormatDiff(r.MinDiff))
	}
	return nil
}

func sameOrDiff(same bool) string {
	if same {
		return "same"
	}
	return "diff"
}

// #endregion detail-mode

// #region helpers

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
