package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/diffanalysis/internal/replay"
)

// execute runs the root command and returns stdout and the exit code main
// would use.
func execute(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	if err == nil {
		return out.String(), 0
	}
	t.Logf("stderr: %s", errOut.String())
	t.Logf("error: %v", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return out.String(), ee.code
	}
	return out.String(), 1
}

func TestRoot_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"compare", "diagnose", "replay", "inspect", "export-fixture"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":      {"compare", "--bogus"},
		"no commit source":  {"compare", "--lib", "x"},
		"two commit source": {"compare", "--lib", "x", "--pair", "a_b", "--commits", "c.txt"},
		"missing library":   {"compare", "--pair", "a_b"},
		"bad pair":          {"compare", "--lib", "x", "--pair", "ab"},
		"bad format":        {"compare", "--lib", "x", "--pair", "a_b", "--format", "xml"},
		"bad log level":     {"diagnose", "--log-level", "loud"},
		"too many args":     {"diagnose", "a", "b"},
		"replay no fixture": {"replay"},
		"export no out":     {"export-fixture"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, code := execute(t, "", args...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestDiagnose_Stdin(t *testing.T) {
	out, code := execute(t, "2c2\n< done_fs.write(1)\n---\n> error_fs.write(1): EACCES\n", "diagnose")
	require.Equal(t, 0, code)
	assert.Equal(t, `["Call_fails_oldv"]`+"\n", out)
}

func TestDiagnose_FileWithHunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.diff")
	raw := "1c1\n< Error: Cannot find module './helper'\n---\n> ok\n4c4\n< something else\n---\n> entirely\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	out, code := execute(t, "", "diagnose", "--hunks", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Local_file_renamed_or_removed")
	assert.Contains(t, out, "CATCHALL_UNDIAGNOSED")
	assert.True(t, strings.HasSuffix(out, `["Local_file_renamed_or_removed"]`+"\n"), out)
}

func TestDiagnose_MissingFile(t *testing.T) {
	_, code := execute(t, "", "diagnose", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, 1, code)
}

func TestReplay_Scenarios(t *testing.T) {
	out, code := execute(t, "", "replay", "--fixture", "../../internal/replay/testdata/scenarios.json")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Summary: 6 total, 6 match, 0 diverge")
}

func TestReplay_Divergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, replay.WriteFixture(replay.Fixture{Cases: []replay.FixtureCase{{
		ID:       "wrong",
		Output:   "2c2\n< done_fs.write(1)\n---\n> error_fs.write(1): EACCES\n",
		Expected: []string{"Syntax_err"},
	}}}, path))

	out, code := execute(t, "", "replay", "--fixture", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "DIFF")
	assert.Contains(t, out, "Summary: 1 total, 0 match, 1 diverge")
}

func TestInspect_EmptyDB(t *testing.T) {
	out, code := execute(t, "", "inspect", "--db", filepath.Join(t.TempDir(), "runs.db"))
	require.Equal(t, 0, code)
	assert.Equal(t, "no runs found\n", out)
}

func writeRun(t *testing.T, dir, lib, cand, commit, log, watch string) {
	t.Helper()
	name := lib + "_" + cand + "_" + commit + "_0.log"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testlog_test"+name), []byte(log), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fswatch_test"+name), []byte(watch), 0o644))
}

// TestCompare_EndToEnd drives compare with the system diff, then reads the
// recorded run back through inspect, export-fixture and replay.
func TestCompare_EndToEnd(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not installed")
	}
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	writeRun(t, dir, "lib", "B", "A", "ok\ndone_fs.write(1)\n", "w\n")
	writeRun(t, dir, "lib", "B", "B", "ok\nerror_fs.write(1): EACCES\n", "w\n")

	out, code := execute(t, "", "compare", "--lib", "lib", "--data-dir", dir, "--pair", "A_B",
		"--diagnose", "--db", db, "--summary", "--log-format", "text")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Comparing commit: B to A")
	assert.Contains(t, out, "Behavioural diff between commit B and commit A")
	assert.Contains(t, out, "Summary: 1 pairs, 0 same behaviour, 1 behavioural diff")
	assert.True(t, strings.HasSuffix(out, `["Call_fails_oldv"]`+"\n"), out)

	out, code = execute(t, "", "inspect", "--db", db, "--json")
	require.Equal(t, 0, code)
	var runs []runRow
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "lib", runs[0].Library)
	assert.Equal(t, 1, runs[0].Reps, "detected repetition count is recorded")
	assert.NotEmpty(t, runs[0].FinishedAt)

	fixture := filepath.Join(dir, "fixture.json")
	out, code = execute(t, "", "export-fixture", "--db", db, "--out", fixture)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Exported 1 cases")

	f, err := replay.LoadFixture(fixture)
	require.NoError(t, err)
	require.Len(t, f.Cases, 1)
	assert.Equal(t, []string{"Call_fails_oldv"}, f.Cases[0].Expected)

	out, code = execute(t, "", "replay", "--fixture", fixture)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "1 match, 0 diverge")
}

func TestCompare_ResultsFile(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not installed")
	}
	dir := t.TempDir()
	writeRun(t, dir, "lib", "B", "A", "same\n", "w\n")
	writeRun(t, dir, "lib", "B", "B", "same\n", "w\n")
	results := filepath.Join(dir, "results.yaml")

	out, code := execute(t, "", "compare", "--lib", "lib", "--data-dir", dir, "--pair", "A_B",
		"-o", results, "--format", "yaml")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Same behaviour between commits B and commit A")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.Contains(t, string(data), "B_A:")
	assert.Contains(t, string(data), "min_diff: []")
}

func TestCompare_DiagnosisIsOptIn(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not installed")
	}
	dir := t.TempDir()
	writeRun(t, dir, "lib", "B", "A", "ok\ndone_fs.write(1)\n", "w\n")
	writeRun(t, dir, "lib", "B", "B", "ok\nerror_fs.write(1): EACCES\n", "w\n")

	out, code := execute(t, "", "compare", "--lib", "lib", "--data-dir", dir, "--pair", "A_B")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Behavioural diff between commit B and commit A")
	assert.NotContains(t, out, "Min diff:")
	assert.True(t, strings.HasSuffix(out, "[]\n"), out)
}
