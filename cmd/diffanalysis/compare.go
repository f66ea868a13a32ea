package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/diffanalysis/internal/commits"
	"github.com/danielpatrickdp/diffanalysis/internal/compare"
	"github.com/danielpatrickdp/diffanalysis/internal/config"
	"github.com/danielpatrickdp/diffanalysis/internal/differ"
	"github.com/danielpatrickdp/diffanalysis/internal/report"
	"github.com/danielpatrickdp/diffanalysis/internal/store"
)

// #region command

type compareFlags struct {
	commitFile string
	pair       string
	repo       string
	ref        string
	limit      int
	shortLen   int
	reportPath string
	summary    bool
}

func newCompareCmd(a *app) *cobra.Command {
	var f compareFlags
	var (
		lib, dataDir, diffBin, dbPath, output, format string
		reps                                          int
		diag                                          bool
		timeout                                       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare each commit's test logs against its predecessor's",
		Long: `compare walks a commit list oldest first. Each commit is the candidate
against the commit before it, which is the baseline. Every repetition of the
candidate's run is diffed against every repetition of the baseline's run until
an identical pair is found for both the execution log and the watch log.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			fl := cmd.Flags()
			if fl.Changed("lib") {
				cfg.Library = lib
			}
			if fl.Changed("reps") {
				cfg.Reps = reps
			}
			if fl.Changed("diagnose") {
				cfg.Diagnose = diag
			}
			if fl.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if fl.Changed("diff-bin") {
				cfg.DiffBin = diffBin
			}
			if fl.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if fl.Changed("db") {
				cfg.DB = dbPath
			}
			if fl.Changed("output") {
				cfg.Output = output
			}
			if fl.Changed("format") {
				cfg.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return usageError(err)
			}
			if err := f.validate(); err != nil {
				return usageError(err)
			}
			return a.runCompare(cmd, cfg, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&lib, "lib", "", "library name used in the data file names")
	fl.IntVar(&reps, "reps", 0, "repetitions per commit (0 detects them from the data dir)")
	fl.BoolVar(&diag, "diagnose", false, "classify log differences")
	fl.StringVar(&dataDir, "data-dir", ".", "directory holding the testlog and fswatch files")
	fl.StringVar(&diffBin, "diff-bin", "diff", "diff executable")
	fl.DurationVar(&timeout, "timeout", time.Minute, "limit per diff invocation (0 disables)")
	fl.StringVar(&dbPath, "db", "", "sqlite database recording the run")
	fl.StringVarP(&output, "output", "o", "", "write the per-pair results to this file")
	fl.StringVar(&format, "format", config.FormatJSON, "results file format: json or yaml")
	fl.StringVar(&f.reportPath, "report", "", "write the progress report to this file instead of stdout")
	fl.BoolVar(&f.summary, "summary", false, "append a per-pair table to the progress report")

	fl.StringVar(&f.commitFile, "commits", "", "file with whitespace separated commits, oldest first")
	fl.StringVar(&f.pair, "pair", "", "a single <baseline>_<candidate> commit pair")
	fl.StringVar(&f.repo, "repo", "", "git repository to read the first-parent history from")
	fl.StringVar(&f.ref, "ref", "HEAD", "newest commit to take from --repo")
	fl.IntVar(&f.limit, "limit", 0, "number of commits to take from --repo (0 for all)")
	fl.IntVar(&f.shortLen, "short", 0, "abbreviate --repo hashes to this many characters")
	return cmd
}

// #endregion command

// #region run

func (f compareFlags) validate() error {
	n := 0
	for _, v := range []string{f.commitFile, f.pair, f.repo} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of --commits, --pair or --repo is required")
	}
	return nil
}

func (f compareFlags) commitList() ([]string, error) {
	switch {
	case f.commitFile != "":
		return commits.FromFile(f.commitFile)
	case f.pair != "":
		list, err := commits.FromPair(f.pair)
		if err != nil {
			return nil, usageError(err)
		}
		return list, nil
	default:
		return commits.FromRepo(f.repo, commits.RepoOptions{Ref: f.ref, Limit: f.limit, ShortLen: f.shortLen})
	}
}

func (a *app) runCompare(cmd *cobra.Command, cfg config.Config, f compareFlags) error {
	list, err := f.commitList()
	if errors.Is(err, commits.ErrTooFewCommits) {
		a.log.Warn("nothing to compare", "commits", len(list))
	} else if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var progress io.Writer = cmd.OutOrStdout()
	if f.reportPath != "" {
		rf, err := os.Create(f.reportPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer rf.Close()
		progress = rf
	}
	observers := compare.Observers{report.NewProgress(progress, cfg.Diagnose)}

	var finish func(ok bool, reps int)
	if cfg.DB != "" {
		rec, done, err := a.beginRun(cfg, list)
		if err != nil {
			return err
		}
		observers = append(observers, rec)
		finish = done
	}

	layout := compare.Layout{Root: cfg.DataDir, Library: cfg.Library}
	cmp := compare.NewComparator(differ.NewExecDiffer(cfg.DiffBin, cfg.Timeout), layout,
		compare.Options{Reps: cfg.Reps, Diagnose: cfg.Diagnose}, a.log).
		WithObserver(observers)

	res, runErr := compare.NewDriver(cmp, a.log).Run(ctx, list)
	if finish != nil {
		finish(runErr == nil, res.Reps)
	}
	if f.summary && res != nil {
		if err := report.WriteSummary(progress, res); err != nil {
			return err
		}
	}

	if err := writeResults(cmd.OutOrStdout(), cfg, res); err != nil {
		return err
	}
	return runErr
}

// beginRun opens the result store and registers a run. The returned func
// stores the repetition count used and closes the store, marking the run
// finished first when ok is set.
func (a *app) beginRun(cfg config.Config, list []string) (compare.Observer, func(ok bool, reps int), error) {
	st, err := store.NewStore(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	run, err := st.BeginRun(cfg.Library, cfg.Reps, cfg.Diagnose, list)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	a.log.Info("recording run", "run_id", run.RunID, "db", cfg.DB)
	return store.NewRecorder(st, run.RunID), func(ok bool, reps int) {
		if reps != cfg.Reps {
			if err := st.SetReps(run.RunID, reps); err != nil {
				a.log.Error("record reps", "error", err)
			}
		}
		if ok {
			if err := st.FinishRun(run.RunID); err != nil {
				a.log.Error("finish run", "error", err)
			}
		}
		st.Close()
	}, nil
}

func writeResults(stdout io.Writer, cfg config.Config, res *compare.Results) error {
	if cfg.Output == "" {
		return report.WriteMinDiffs(stdout, res)
	}
	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if cfg.Format == config.FormatYAML {
		err = report.WriteYAML(out, res)
	} else {
		err = report.WriteJSON(out, res)
	}
	if err != nil {
		return err
	}
	return out.Close()
}

// #endregion run
