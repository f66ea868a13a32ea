package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
	"github.com/danielpatrickdp/diffanalysis/internal/report"
)

// #region command

func newDiagnoseCmd(a *app) *cobra.Command {
	var hunks, jsonOut bool
	cmd := &cobra.Command{
		Use:   "diagnose [diff-output-file]",
		Short: "Classify a saved diff output (stdin when no file or -)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			cl := diagnose.NewClassifier(diagnose.DefaultRules())
			all := cl.ClassifyAll(raw)
			res := cl.Diagnose(raw)
			a.log.Debug("diagnosed", "hunks", len(all), "categories", len(res))

			out := cmd.OutOrStdout()
			if jsonOut {
				return printDiagnosisJSON(out, all, res, hunks)
			}
			if hunks {
				printHunkTable(out, all)
			}
			_, err = fmt.Fprintln(out, report.FormatDiff(res))
			return err
		},
	}
	cmd.Flags().BoolVar(&hunks, "hunks", false, "also show the rule and category of every hunk")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read diff output: %w", err)
	}
	return string(b), nil
}

// #endregion command

// #region output

type hunkRow struct {
	Rule      string `json:"rule"`
	Category  string `json:"category"`
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`
}

type diagnosisOutput struct {
	Hunks  []hunkRow           `json:"hunks,omitempty"`
	Result diagnose.DiffResult `json:"result"`
}

func printDiagnosisJSON(w io.Writer, all []diagnose.HunkDiagnosis, res diagnose.DiffResult, withHunks bool) error {
	out := diagnosisOutput{Result: res}
	if withHunks {
		for _, h := range all {
			out.Hunks = append(out.Hunks, hunkRow{
				Rule:      h.Rule,
				Category:  string(h.Category),
				Baseline:  h.Hunk.Baseline,
				Candidate: h.Hunk.Candidate,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printHunkTable(w io.Writer, all []diagnose.HunkDiagnosis) {
	fmt.Fprintf(w, "%-4s| %-28s| %-40s| %s\n", "#", "Rule", "Category", "First line")
	fmt.Fprintf(w, "%-4s+%-29s+%-41s+%s\n", "----", "-----------------------------", "-----------------------------------------", "--------------------")
	for i, h := range all {
		cat := string(h.Category)
		if h.Category == diagnose.NotMeaningful {
			cat = "(not meaningful)"
		}
		fmt.Fprintf(w, "%-4d| %-28s| %-40s| %s\n", i+1, h.Rule, cat, firstLine(h.Hunk))
	}
	fmt.Fprintln(w)
}

func firstLine(h diagnose.Hunk) string {
	side := h.Baseline
	if side == "" {
		side = h.Candidate
	}
	line, _, _ := strings.Cut(side, "\n")
	return line
}

// #endregion output
