package replay

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region fixture-tests

// TestFixture_Scenarios is the regression baseline for the rule table: any
// change in rule order or matching shows up as a diverging case.
func TestFixture_Scenarios(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "scenarios.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) == 0 {
		t.Fatal("fixture has no cases")
	}

	results := Replay(f.Cases, nil)
	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for i, r := range results {
		if r.ID != f.Cases[i].ID {
			t.Errorf("case %d: expected id=%s, got %s", i, f.Cases[i].ID, r.ID)
		}
		if !r.Match {
			t.Errorf("case %s: expected %v, got %v", r.ID, r.Expected, r.Got)
		}
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	want := Fixture{
		Description: "export",
		Cases: []FixtureCase{
			{ID: "1", Output: "1c1\n< a\n---\n> b\n", Expected: []string{"CATCHALL_UNDIAGNOSED"}},
			{ID: "2", Output: "", Expected: []string{}},
		},
	}
	if err := WriteFixture(want, path); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

// #endregion fixture-tests

// #region harness-tests

func TestReplay_Divergence(t *testing.T) {
	cases := []FixtureCase{
		{ID: "ok", Output: "1c1\n< a\n---\n> b\n", Expected: []string{"CATCHALL_UNDIAGNOSED"}},
		{ID: "stale", Output: "1c1\n< a\n---\n> b\n", Expected: []string{"Syntax_err"}},
	}
	results := Replay(cases, nil)
	if !results[0].Match || results[1].Match {
		t.Fatalf("unexpected matches: %+v", results)
	}

	s := Summarize(results)
	if s.Total != 2 || s.Matches != 1 || s.Diverged != 1 {
		t.Fatalf("summary: %+v", s)
	}
	if s.Categories[diagnose.CatchallUndiagnosed] != 2 {
		t.Fatalf("category counts: %v", s.Categories)
	}
}

func TestReplay_CustomClassifier(t *testing.T) {
	rules := []diagnose.Rule{{
		Name:  "everything-is-syntax",
		Match: func(diagnose.Hunk) bool { return true },
		Label: func(diagnose.Hunk) diagnose.Category { return diagnose.SyntaxErr },
	}}
	results := Replay([]FixtureCase{{ID: "x", Output: "1c1\n< a\n---\n> b\n", Expected: []string{"Syntax_err"}}},
		diagnose.NewClassifier(rules))
	if !results[0].Match {
		t.Fatalf("got %v", results[0].Got)
	}
}

func TestMatch(t *testing.T) {
	a, b, c := diagnose.CallFailsOldv, diagnose.SyntaxErr, diagnose.CatchallUndiagnosed
	tests := []struct {
		name string
		x, y diagnose.DiffResult
		want bool
	}{
		{"both-empty", diagnose.DiffResult{}, nil, true},
		{"same-order", diagnose.DiffResult{a, b}, diagnose.DiffResult{a, b}, true},
		{"reordered", diagnose.DiffResult{a, b}, diagnose.DiffResult{b, a}, true},
		{"counts-matter", diagnose.DiffResult{a, a, b}, diagnose.DiffResult{a, b, b}, false},
		{"length", diagnose.DiffResult{a}, diagnose.DiffResult{a, a}, false},
		{"different", diagnose.DiffResult{a}, diagnose.DiffResult{c}, false},
	}
	for _, tt := range tests {
		if got := Match(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// #endregion harness-tests
