// Package perf provides the SQLite-backed performance metric store.
package perf

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	coreperf "github.com/shipmind-ai/shipmind/core/perf"
)

// SQLiteStore persists model performance metrics in a SQLite database. The
// upsert keeps one row per model, so concurrent writers cannot interleave a
// read-modify-write cycle.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS model_performance (
        model TEXT PRIMARY KEY,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        success_rate REAL,
        avg_confidence REAL,
        predictions INTEGER,
        last_evaluated INTEGER,
        last_trained INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Put inserts or replaces the metric for the model.
func (s *SQLiteStore) Put(ctx context.Context, m coreperf.Metric) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO model_performance
        (model, accuracy, precision, recall, f1, success_rate, avg_confidence,
         predictions, last_evaluated, last_trained)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(model) DO UPDATE SET
            accuracy = excluded.accuracy,
            precision = excluded.precision,
            recall = excluded.recall,
            f1 = excluded.f1,
            success_rate = excluded.success_rate,
            avg_confidence = excluded.avg_confidence,
            predictions = excluded.predictions,
            last_evaluated = excluded.last_evaluated,
            last_trained = excluded.last_trained`,
		m.Model, m.Accuracy, m.Precision, m.Recall, m.F1, m.SuccessRate,
		m.AvgConfidence, m.Predictions, unixOrZero(m.LastEvaluated), unixOrZero(m.LastTrained))
	return err
}

// Get returns the metric for the model if present.
func (s *SQLiteStore) Get(ctx context.Context, model string) (coreperf.Metric, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT model, accuracy, precision, recall, f1,
        success_rate, avg_confidence, predictions, last_evaluated, last_trained
        FROM model_performance WHERE model = ?`, model)
	m, err := scanMetric(row.Scan)
	if err == sql.ErrNoRows {
		return coreperf.Metric{}, false, nil
	}
	if err != nil {
		return coreperf.Metric{}, false, err
	}
	return m, true, nil
}

// List returns all metrics ordered by model name.
func (s *SQLiteStore) List(ctx context.Context) ([]coreperf.Metric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model, accuracy, precision, recall, f1,
        success_rate, avg_confidence, predictions, last_evaluated, last_trained
        FROM model_performance ORDER BY model`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []coreperf.Metric
	for rows.Next() {
		m, err := scanMetric(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanMetric(scan func(dest ...any) error) (coreperf.Metric, error) {
	var m coreperf.Metric
	var lastEvaluated, lastTrained int64
	if err := scan(&m.Model, &m.Accuracy, &m.Precision, &m.Recall, &m.F1,
		&m.SuccessRate, &m.AvgConfidence, &m.Predictions, &lastEvaluated, &lastTrained); err != nil {
		return coreperf.Metric{}, err
	}
	if lastEvaluated > 0 {
		m.LastEvaluated = time.Unix(lastEvaluated, 0).UTC()
	}
	if lastTrained > 0 {
		m.LastTrained = time.Unix(lastTrained, 0).UTC()
	}
	return m, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
