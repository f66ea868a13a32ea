package diagnose

// #region prune

// PrunePairs removes occurrences of a and b in lock-step, one of each at a
// time, until one of them runs out. The first occurrences go first.
func PrunePairs(cats []Category, a, b Category) []Category {
	var na, nb int
	for _, c := range cats {
		switch c {
		case a:
			na++
		case b:
			nb++
		}
	}
	n := min(na, nb)
	if n == 0 {
		return cats
	}

	out := make([]Category, 0, len(cats)-2*n)
	ra, rb := n, n
	for _, c := range cats {
		if c == a && ra > 0 {
			ra--
			continue
		}
		if c == b && rb > 0 {
			rb--
			continue
		}
		out = append(out, c)
	}
	return out
}

// #endregion prune

// #region aggregate

// Aggregate reduces the per-hunk categories of one file-pair comparison to a
// DiffResult:
//
//  1. equal numbers of old/new internal async errors cancel out, since they
//     only show callbacks firing in another order;
//  2. full labels are deduplicated;
//  3. details are stripped (labels may repeat afterwards);
//  4. timing and whitespace artifacts are dropped;
//  5. when a noise category is present, catch-all and baseline-only entries
//     are dropped;
//  6. a lone Diff_return_value collapses to nothing.
//
// The result is never nil.
func Aggregate(cats []Category) DiffResult {
	pruned := PrunePairs(cats, InternalAsyncErrorOldv, InternalAsyncErrorNewv)

	seen := make(map[Category]bool, len(pruned))
	stripped := make(DiffResult, 0, len(pruned))
	for _, c := range pruned {
		if seen[c] {
			continue
		}
		seen[c] = true
		if c == NotMeaningful {
			continue
		}
		stripped = append(stripped, c.Label())
	}

	result := removeNoise(stripped)

	if len(result) == 1 && result[0] == DiffReturnValue {
		return DiffResult{}
	}
	return result
}

func removeNoise(cats DiffResult) DiffResult {
	noisy := false
	for _, c := range cats {
		if c.IsNoise() {
			noisy = true
			break
		}
	}
	if !noisy {
		return cats
	}

	out := make(DiffResult, 0, len(cats))
	for _, c := range cats {
		if c == CatchallUndiagnosed || c.OldvOnly() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// #endregion aggregate

// #region diagnose

// HunkDiagnosis is the classification of a single hunk.
type HunkDiagnosis struct {
	Hunk     Hunk
	Rule     string
	Category Category
}

// ClassifyAll splits raw diff output into hunks and classifies each one.
func (c *Classifier) ClassifyAll(raw string) []HunkDiagnosis {
	blocks := SplitHunks(raw)
	out := make([]HunkDiagnosis, len(blocks))
	for i, b := range blocks {
		h := ParseHunk(b)
		rule, cat := c.ClassifyRule(h)
		out[i] = HunkDiagnosis{Hunk: h, Rule: rule, Category: cat}
	}
	return out
}

// Diagnose turns raw diff output into its DiffResult.
func (c *Classifier) Diagnose(raw string) DiffResult {
	hunks := c.ClassifyAll(raw)
	cats := make([]Category, len(hunks))
	for i, h := range hunks {
		cats[i] = h.Category
	}
	return Aggregate(cats)
}

// Diagnose runs the default classifier over raw diff output.
func Diagnose(raw string) DiffResult {
	return defaultClassifier.Diagnose(raw)
}

// #endregion diagnose
