package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a build id has no record.
var ErrNotFound = errors.New("build not found")

// BuildRecord is one row of build history.
type BuildRecord struct {
	Seq          int64     `json:"seq"` // Assigned by the store
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"` // Informational only; never used for ordering
	DurationMS   int64     `json:"duration_ms"`
	OutputPath   string    `json:"output_path"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ExitCode     int       `json:"exit_code"` // -1 when the compiler never ran
	Fingerprint  string    `json:"fingerprint,omitempty"`
	Args         []string  `json:"args"`
	Warnings     []string  `json:"warnings"`
}

// RecordBuild appends a build record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) error {
	argsJSON, err := marshalStrings(rec.Args)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	warningsJSON, err := marshalStrings(rec.Warnings)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO builds
		(id, started_at, duration_ms, output_path, status, error_kind, error_message, exit_code, fingerprint, args, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.DurationMS,
		rec.OutputPath,
		rec.Status,
		rec.ErrorKind,
		rec.ErrorMessage,
		rec.ExitCode,
		rec.Fingerprint,
		argsJSON,
		warningsJSON,
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// ListBuilds returns the most recent builds, newest first.
// A non-positive limit returns every build.
//
// Returns an empty slice (not nil) when there is no history.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	query := `
		SELECT seq, id, started_at, duration_ms, output_path, status, error_kind, error_message, exit_code, fingerprint, args, warnings
		FROM builds
		ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	records := []BuildRecord{}
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return records, nil
}

// GetBuild returns the build with the given id, or ErrNotFound.
func (s *Store) GetBuild(ctx context.Context, id string) (BuildRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, started_at, duration_ms, output_path, status, error_kind, error_message, exit_code, fingerprint, args, warnings
		FROM builds
		WHERE id = ?
	`, id)

	rec, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BuildRecord{}, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (BuildRecord, error) {
	var (
		rec          BuildRecord
		startedAt    string
		argsJSON     string
		warningsJSON string
	)
	err := row.Scan(
		&rec.Seq,
		&rec.ID,
		&startedAt,
		&rec.DurationMS,
		&rec.OutputPath,
		&rec.Status,
		&rec.ErrorKind,
		&rec.ErrorMessage,
		&rec.ExitCode,
		&rec.Fingerprint,
		&argsJSON,
		&warningsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan build: %w", err)
	}

	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return rec, fmt.Errorf("parse started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(argsJSON), &rec.Args); err != nil {
		return rec, fmt.Errorf("unmarshal args: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &rec.Warnings); err != nil {
		return rec, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return rec, nil
}

func marshalStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
