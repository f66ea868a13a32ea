package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded diff output with its expected diagnosis.
type FixtureCase struct {
	ID       string   `json:"id"`
	Output   string   `json:"output"`
	Expected []string `json:"expected"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(f Fixture, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ExpectedResult converts the case's expected labels.
func (fc *FixtureCase) ExpectedResult() diagnose.DiffResult {
	return diagnose.ParseDiffResult(fc.Expected)
}

// #endregion fixture-loader
