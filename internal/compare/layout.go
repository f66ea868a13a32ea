package compare

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// #region artifact

// Artifact is a kind of file captured per test run.
type Artifact string

const (
	// ArtifactLog is the test execution log.
	ArtifactLog Artifact = "log"
	// ArtifactWatch is the filesystem-watch log.
	ArtifactWatch Artifact = "watch"
)

func (a Artifact) filePrefix() string {
	if a == ArtifactWatch {
		return "fswatch_test"
	}
	return "testlog_test"
}

// #endregion artifact

// #region layout

// Layout locates the harness output files of one library under Root.
//
// The harness generates tests against the candidate commit and runs them on
// both commits, so every file name carries the candidate first and the commit
// the run executed on second:
//
//	<root>/testlog_test<lib>_<candidate>_<commit>_<rep>.log
//	<root>/fswatch_test<lib>_<candidate>_<commit>_<rep>.log
type Layout struct {
	Root    string
	Library string
}

// Path returns the file of artifact a for the run of commit at repetition rep.
func (l Layout) Path(a Artifact, candidate, commit string, rep int) string {
	root := l.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, l.fileName(a, candidate, commit, rep))
}

func (l Layout) fileName(a Artifact, candidate, commit string, rep int) string {
	return fmt.Sprintf("%s%s_%s_%s_%d.log", a.filePrefix(), l.Library, candidate, commit, rep)
}

// DetectReps counts the candidate's own execution-log repetitions on disk.
// It returns the highest repetition index found plus one.
func (l Layout) DetectReps(candidate string) (int, error) {
	root := l.Root
	if root == "" {
		root = "."
	}
	prefix := ArtifactLog.filePrefix() + l.Library + "_" + candidate + "_" + candidate + "_"
	matches, err := doublestar.Glob(os.DirFS(root), escapeMeta(prefix)+"*.log")
	if err != nil {
		return 0, fmt.Errorf("glob %s: %w", root, err)
	}

	reps := 0
	for _, m := range matches {
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(m, prefix), ".log"))
		if err != nil || idx < 0 {
			continue
		}
		reps = max(reps, idx+1)
	}
	return reps, nil
}

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// #endregion layout
