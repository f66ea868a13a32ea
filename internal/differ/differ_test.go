package differ

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

func requireDiff(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff binary not available")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestExecDiffer_Same(t *testing.T) {
	requireDiff(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "done_fs.write(1)\n")
	b := writeFile(t, dir, "b.log", "done_fs.write(1)\n")

	res := NewExecDiffer("", 0).Diff(context.Background(), a, b)
	assert.True(t, res.Same())
	assert.Empty(t, res.Stdout)
}

func TestExecDiffer_Differs(t *testing.T) {
	requireDiff(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "start\ndone_fs.write(1)\n")
	b := writeFile(t, dir, "b.log", "start\nerror_fs.write(1): EACCES\n")

	res := NewExecDiffer("diff", time.Minute).Diff(context.Background(), a, b)
	require.True(t, res.Differs())
	assert.Equal(t, "2c2\n< done_fs.write(1)\n---\n> error_fs.write(1): EACCES\n", string(res.Stdout))

	assert.Equal(t, diagnose.DiffResult{diagnose.CallFailsOldv}, diagnose.Diagnose(string(res.Stdout)))
}

func TestExecDiffer_MissingFile(t *testing.T) {
	requireDiff(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "x\n")

	res := NewExecDiffer("diff", 0).Diff(context.Background(), a, filepath.Join(dir, "missing.log"))
	assert.True(t, res.Failed())
	assert.Equal(t, CodeTrouble, res.Code)
	assert.NotEmpty(t, res.Stderr)
}

func TestExecDiffer_BinaryNotFound(t *testing.T) {
	res := NewExecDiffer("definitely-not-a-diff-binary", 0).Diff(context.Background(), "a", "b")

	assert.True(t, res.Differs())
	assert.True(t, strings.HasPrefix(string(res.Stdout), "\nError running: definitely-not-a-diff-binary a b"))
	assert.Equal(t, res.Stdout, res.Stderr)
	assert.Equal(t, diagnose.DiffResult{diagnose.CatchallUndiagnosed}, diagnose.Diagnose(string(res.Stdout)))
}

func TestExecDiffer_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	slow := writeFile(t, t.TempDir(), "slowdiff.sh", "#!/bin/sh\nexec sleep 10\n")
	require.NoError(t, os.Chmod(slow, 0o755))

	start := time.Now()
	res := NewExecDiffer(slow, 50*time.Millisecond).Diff(context.Background(), "a", "b")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, res.Differs())
	assert.Contains(t, string(res.Stdout), "deadline exceeded")
}

func TestExecDiffer_CallerCancelled(t *testing.T) {
	requireDiff(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "same\n")
	b := writeFile(t, dir, "b.log", "same\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, timeout := range []time.Duration{0, time.Minute} {
		res := NewExecDiffer("diff", timeout).Diff(ctx, a, b)
		assert.Equal(t, CodeCancelled, res.Code, "timeout %s", timeout)
		assert.False(t, res.Differs())
		assert.Empty(t, res.Stdout, "no synthetic diff text")
		assert.Contains(t, string(res.Stderr), "context canceled")
	}
}

func TestResultPredicates(t *testing.T) {
	tests := []struct {
		code                  int
		same, differs, failed bool
	}{
		{0, true, false, false},
		{1, false, true, false},
		{2, false, false, true},
		{-1, false, false, true},
	}
	for _, tt := range tests {
		r := Result{Code: tt.code}
		assert.Equal(t, tt.same, r.Same(), "code %d", tt.code)
		assert.Equal(t, tt.differs, r.Differs(), "code %d", tt.code)
		assert.Equal(t, tt.failed, r.Failed(), "code %d", tt.code)
	}
}
