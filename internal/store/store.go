// Package store persists comparison runs in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/diffanalysis/internal/diagnose"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id        TEXT PRIMARY KEY,
	library       TEXT NOT NULL,
	reps          INTEGER NOT NULL,
	diagnose      INTEGER NOT NULL,
	commits_json  TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS pair_records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	pair_key      TEXT NOT NULL,
	baseline      TEXT NOT NULL,
	candidate     TEXT NOT NULL,
	min_diff      TEXT,
	all_diffs     TEXT NOT NULL,
	same_log      INTEGER NOT NULL,
	same_watch    INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	UNIQUE (run_id, pair_key),
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);

CREATE TABLE IF NOT EXISTS diff_outputs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	pair_key      TEXT NOT NULL,
	artifact      TEXT NOT NULL,
	baseline_rep  INTEGER NOT NULL,
	candidate_rep INTEGER NOT NULL,
	exit_code     INTEGER NOT NULL,
	output        TEXT NOT NULL,
	categories    TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store manages analysis results in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion constructor

// #region runs
// BeginRun registers a new run and returns it with a fresh ID.
func (s *Store) BeginRun(library string, reps int, diagnosed bool, commits []string) (RunRecord, error) {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		Library:   library,
		Reps:      reps,
		Diagnose:  diagnosed,
		Commits:   commits,
		StartedAt: time.Now().UTC(),
	}
	commitsJSON, err := json.Marshal(commits)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal commits: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO analysis_runs (run_id, library, reps, diagnose, commits_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, library, reps, diagnosed, string(commitsJSON), rec.StartedAt.Format(timeFormat),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(runID string) error {
	res, err := s.db.Exec(
		`UPDATE analysis_runs SET finished_at = ? WHERE run_id = ?`,
		time.Now().UTC().Format(timeFormat), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// SetReps records the repetition count a run actually used, which is only
// known once it has been detected from the data directory.
func (s *Store) SetReps(runID string, reps int) error {
	res, err := s.db.Exec(`UPDATE analysis_runs SET reps = ? WHERE run_id = ?`, reps, runID)
	if err != nil {
		return fmt.Errorf("set reps: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun retrieves one run by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, library, reps, diagnose, commits_json, started_at, finished_at
		 FROM analysis_runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns all runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, library, reps, diagnose, commits_json, started_at, finished_at
		 FROM analysis_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var commitsJSON, startedStr string
	var finished sql.NullString
	if err := sc.Scan(&rec.RunID, &rec.Library, &rec.Reps, &rec.Diagnose, &commitsJSON, &startedStr, &finished); err != nil {
		return RunRecord{}, err
	}
	if err := json.Unmarshal([]byte(commitsJSON), &rec.Commits); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal commits: %w", err)
	}
	rec.StartedAt, _ = time.Parse(timeFormat, startedStr)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(timeFormat, finished.String)
	}
	return rec, nil
}
// #endregion runs

// #region pair-records
// SaveRecord inserts or replaces the record of one pair.
func (s *Store) SaveRecord(rec PairRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	minDiff, err := marshalCategories(rec.MinDiff)
	if err != nil {
		return err
	}
	allDiffs := rec.AllDiffs
	if allDiffs == nil {
		allDiffs = []diagnose.DiffResult{}
	}
	allJSON, err := json.Marshal(allDiffs)
	if err != nil {
		return fmt.Errorf("marshal all diffs: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO pair_records (run_id, pair_key, baseline, candidate, min_diff, all_diffs, same_log, same_watch, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, pair_key) DO UPDATE SET
		   min_diff = excluded.min_diff, all_diffs = excluded.all_diffs,
		   same_log = excluded.same_log, same_watch = excluded.same_watch`,
		rec.RunID, rec.PairKey, rec.Baseline, rec.Candidate, minDiff, string(allJSON),
		rec.SameLog, rec.SameWatch, rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert pair record: %w", err)
	}
	return nil
}

// ListRecords returns a run's pair records in comparison order.
func (s *Store) ListRecords(runID string) ([]PairRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, pair_key, baseline, candidate, min_diff, all_diffs, same_log, same_watch, created_at
		 FROM pair_records WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []PairRecord
	for rows.Next() {
		var rec PairRecord
		var minDiff sql.NullString
		var allJSON, createdStr string
		if err := rows.Scan(&rec.RunID, &rec.PairKey, &rec.Baseline, &rec.Candidate,
			&minDiff, &allJSON, &rec.SameLog, &rec.SameWatch, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rec.MinDiff, err = unmarshalCategories(minDiff); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(allJSON), &rec.AllDiffs); err != nil {
			return nil, fmt.Errorf("unmarshal all diffs: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion pair-records

// #region diff-outputs
// SaveDiffOutput stores one raw diff output and returns its row ID.
func (s *Store) SaveDiffOutput(out DiffOutput) (int64, error) {
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	cats, err := marshalCategories(out.Categories)
	if err != nil {
		return 0, err
	}

	res, err := s.db.Exec(
		`INSERT INTO diff_outputs (run_id, pair_key, artifact, baseline_rep, candidate_rep, exit_code, output, categories, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.RunID, out.PairKey, out.Artifact, out.BaselineRep, out.CandidateRep,
		out.ExitCode, out.Output, cats, out.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert diff output: %w", err)
	}
	return res.LastInsertId()
}

// ListDiffOutputs returns the last limit outputs of a run, oldest first.
// A limit of zero or less returns all of them.
func (s *Store) ListDiffOutputs(runID string, limit int) ([]DiffOutput, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, pair_key, artifact, baseline_rep, candidate_rep, exit_code, output, categories, created_at
		 FROM diff_outputs WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list diff outputs: %w", err)
	}
	defer rows.Close()

	var outs []DiffOutput
	for rows.Next() {
		var out DiffOutput
		var cats sql.NullString
		var createdStr string
		if err := rows.Scan(&out.ID, &out.RunID, &out.PairKey, &out.Artifact, &out.BaselineRep,
			&out.CandidateRep, &out.ExitCode, &out.Output, &cats, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if out.Categories, err = unmarshalCategories(cats); err != nil {
			return nil, err
		}
		out.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		outs = append(outs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(outs)
	return outs, nil
}
// #endregion diff-outputs

// #region helpers
// timeFormat is fixed-width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// marshalCategories encodes a nil result as NULL so "never diagnosed" and
// "diagnosed as empty" stay distinct.
func marshalCategories(d diagnose.DiffResult) (any, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	return string(b), nil
}

func unmarshalCategories(s sql.NullString) (diagnose.DiffResult, error) {
	if !s.Valid {
		return nil, nil
	}
	d := diagnose.DiffResult{}
	if err := json.Unmarshal([]byte(s.String), &d); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	return d, nil
}
// #endregion helpers
