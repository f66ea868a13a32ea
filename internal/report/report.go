// Package report renders comparison results for people and for other tools.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/diffanalysis/internal/compare"
	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region json

const indent = "    "

// WriteJSON writes the pair key to record mapping with four-space indents.
// Pairs keep their comparison order.
func WriteJSON(w io.Writer, res *compare.Results) error {
	var buf bytes.Buffer
	if len(res.Pairs) == 0 {
		buf.WriteString("{}\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	buf.WriteString("{\n")
	for i, p := range res.Pairs {
		key, err := json.Marshal(p.Key)
		if err != nil {
			return fmt.Errorf("marshal key: %w", err)
		}
		rec, err := json.MarshalIndent(res.Records[p.Key], indent, indent)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", p.Key, err)
		}
		buf.WriteString(indent)
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(rec)
		if i < len(res.Pairs)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// #endregion json

// #region yaml

// WriteYAML writes the same mapping as WriteJSON as a YAML document.
func WriteYAML(w io.Writer, res *compare.Results) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range res.Pairs {
		var val yaml.Node
		if err := val.Encode(res.Records[p.Key]); err != nil {
			return fmt.Errorf("encode record %s: %w", p.Key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
			&val,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}

// #endregion yaml

// #region min-diffs

// WriteMinDiffs prints every pair's min diff flattened into one list.
func WriteMinDiffs(w io.Writer, res *compare.Results) error {
	_, err := fmt.Fprintln(w, FormatDiff(res.MinDiffs()))
	return err
}

// FormatDiff renders a diff result as a JSON list, "null" when nil.
func FormatDiff(d diagnose.DiffResult) string {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprint(d.Strings())
	}
	return string(b)
}

// #endregion min-diffs

// #region summary

// WriteSummary prints one table row per pair and a closing count line.
func WriteSummary(w io.Writer, res *compare.Results) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s| %-5s| %-5s| %s\n", "Pair", "Log", "Watch", "Min diff")
	fmt.Fprintf(&b, "%-24s+%-6s+%-6s+%s\n",
		"------------------------", "------", "------", "--------------------")

	same := 0
	for _, p := range res.Pairs {
		rec := res.Records[p.Key]
		if rec.SameBehaviour() {
			same++
		}
		fmt.Fprintf(&b, "%-24s| %-5s| %-5s| %s\n",
			p.Key, mark(rec.LogResolved), mark(rec.WatchResolved), FormatDiff(rec.MinDiff))
	}
	fmt.Fprintf(&b, "\nSummary: %d pairs, %d same behaviour, %d behavioural diff\n",
		len(res.Pairs), same, len(res.Pairs)-same)

	_, err := io.WriteString(w, b.String())
	return err
}

func mark(resolved bool) string {
	if resolved {
		return "same"
	}
	return "diff"
}

// #endregion summary
