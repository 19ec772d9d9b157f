package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    status TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT,
    train_path TEXT,
    test_path TEXT,
    model_path TEXT,
    accuracy REAL,
    auc REAL,
    f1_score REAL,
    error TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_start_time ON runs(start_time);
`

// Store keeps run records in a SQLite database.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts the run or replaces the previous record with the same ID.
func (s *Store) Record(ctx context.Context, run *Run) error {
	var endTime sql.NullString
	if run.EndTime != nil {
		endTime = sql.NullString{String: run.EndTime.UTC().Format(timeLayout), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO runs
            (id, action, status, start_time, end_time, train_path, test_path, model_path, accuracy, auc, f1_score, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Action, string(run.Status), run.StartTime.UTC().Format(timeLayout), endTime,
		run.TrainPath, run.TestPath, run.ModelPath, run.Accuracy, run.AUC, run.F1Score, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

const selectRuns = `
    SELECT id, action, status, start_time, end_time, train_path, test_path, model_path, accuracy, auc, f1_score, error
    FROM runs`

func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY start_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                            Run
		status, start                  string
		end                            sql.NullString
		trainPath, testPath, modelPath sql.NullString
		accuracy, auc, f1              sql.NullFloat64
		errText                        sql.NullString
	)

	err := sc.Scan(&run.ID, &run.Action, &status, &start, &end,
		&trainPath, &testPath, &modelPath, &accuracy, &auc, &f1, &errText)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	run.StartTime, err = time.Parse(timeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start time for run %s: %w", run.ID, err)
	}
	if end.Valid {
		t, err := time.Parse(timeLayout, end.String)
		if err != nil {
			return nil, fmt.Errorf("invalid end time for run %s: %w", run.ID, err)
		}
		run.EndTime = &t
	}

	run.TrainPath = trainPath.String
	run.TestPath = testPath.String
	run.ModelPath = modelPath.String
	run.Accuracy = accuracy.Float64
	run.AUC = auc.Float64
	run.F1Score = f1.Float64
	run.Error = errText.String

	return &run, nil
}
