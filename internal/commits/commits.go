// Package commits produces the ordered commit lists a comparison walks.
package commits

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrTooFewCommits is returned when a source yields fewer than two commits.
var ErrTooFewCommits = errors.New("need at least two commits to compare")

// #region file

// FromFile reads a whitespace separated commit list, oldest first.
func FromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commit list %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse splits s on whitespace.
func Parse(s string) ([]string, error) {
	list := strings.Fields(s)
	if len(list) < 2 {
		return list, ErrTooFewCommits
	}
	return list, nil
}

// FromPair splits "A_B" into [A, B]. A is the baseline.
func FromPair(pair string) ([]string, error) {
	a, b, ok := strings.Cut(pair, "_")
	if !ok || a == "" || b == "" || strings.Contains(b, "_") {
		return nil, fmt.Errorf("commit pair %q: want <baseline>_<candidate>", pair)
	}
	return []string{a, b}, nil
}

// #endregion file

// #region repo

// RepoOptions selects commits from a git history.
type RepoOptions struct {
	// Ref is the newest commit to include. Empty means HEAD.
	Ref string
	// Limit caps the number of commits. Zero means the whole history.
	Limit int
	// ShortLen abbreviates hashes to this many characters when positive.
	ShortLen int
}

// FromRepo walks the first-parent history of a git repository ending at
// opts.Ref and returns it oldest first.
func FromRepo(path string, opts RepoOptions) ([]string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	ref := opts.Ref
	if ref == "" {
		ref = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}
	c, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", hash, err)
	}

	var list []string
	for c != nil {
		list = append(list, abbrev(c.Hash, opts.ShortLen))
		if opts.Limit > 0 && len(list) >= opts.Limit {
			break
		}
		c, err = firstParent(c)
		if err != nil {
			return nil, err
		}
	}
	slices.Reverse(list)

	if len(list) < 2 {
		return list, ErrTooFewCommits
	}
	return list, nil
}

func firstParent(c *object.Commit) (*object.Commit, error) {
	if c.NumParents() == 0 {
		return nil, nil
	}
	p, err := c.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("parent of %s: %w", c.Hash, err)
	}
	return p, nil
}

func abbrev(h plumbing.Hash, n int) string {
	s := h.String()
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

// #endregion repo
