// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists solved trajectory runs in a SQLite database so
// results can be reviewed and exported later.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/marte/pkg/types"
)

const dbFile = "marte.db"

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog at cfg.Dir/marte.db and creates
// the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			kind TEXT NOT NULL,
			model TEXT,
			ephemeris TEXT,
			departure REAL,
			arrival REAL,
			proper_time REAL,
			acceleration REAL,
			mass REAL
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			converged INTEGER NOT NULL,
			rejection TEXT,
			peak_beta REAL,
			peak_gamma REAL,
			total_proper_time REAL,
			turnaround_time REAL,
			arrival_slip REAL,
			rendezvous_miss REAL,
			residual_norm REAL,
			heading_deg REAL,
			direction_out TEXT,
			phase_boundaries TEXT,
			energy REAL,
			waypoints INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_run_id ON candidates(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its candidates in one transaction. An empty ID
// is replaced by a new UUID and a zero CreatedAt by the current time. It
// returns the stored run ID.
func (s *Store) Record(ctx context.Context, run types.RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req := run.Request
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, kind, model, ephemeris, departure, arrival, proper_time, acceleration, mass)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), string(run.Kind), req.Model, req.Ephemeris,
		req.Departure, req.Arrival, req.ProperTime, req.Acceleration, req.Mass,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candidates (run_id, idx, converged, rejection, peak_beta, peak_gamma,
			total_proper_time, turnaround_time, arrival_slip, rendezvous_miss, residual_norm,
			heading_deg, direction_out, phase_boundaries, energy, waypoints)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range run.Candidates {
		dirJSON, _ := json.Marshal(c.DirectionOut)
		boundsJSON, _ := json.Marshal(c.PhaseBoundaries)
		_, err := stmt.ExecContext(ctx,
			run.ID, i, c.Converged, c.Rejection, c.PeakBeta, c.PeakGamma,
			c.TotalProperTime, c.TurnaroundTime, c.ArrivalSlip, c.RendezvousMiss, c.ResidualNorm,
			c.HeadingDeg, string(dirJSON), string(boundsJSON), c.Energy, c.Waypoints,
		)
		if err != nil {
			return "", fmt.Errorf("inserting candidate %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// List returns up to limit runs, newest first, with their candidates.
// A non-positive limit uses the configured maximum.
func (s *Store) List(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, kind, model, ephemeris, departure, arrival, proper_time, acceleration, mass
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		cands, err := s.candidates(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Candidates = cands
	}
	return runs, nil
}

// Get returns one run by ID, or ErrRunNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, kind, model, ephemeris, departure, arrival, proper_time, acceleration, mass
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return types.RunRecord{}, err
	}

	run.Candidates, err = s.candidates(ctx, id)
	if err != nil {
		return types.RunRecord{}, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.RunRecord, error) {
	var (
		run       types.RunRecord
		createdAt string
		kind      string
		model     sql.NullString
		ephemeris sql.NullString
	)
	err := sc.Scan(&run.ID, &createdAt, &kind, &model, &ephemeris,
		&run.Request.Departure, &run.Request.Arrival, &run.Request.ProperTime,
		&run.Request.Acceleration, &run.Request.Mass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scanning run: %w", err)
	}
	run.Kind = types.RunKind(kind)
	run.Request.Model = model.String
	run.Request.Ephemeris = ephemeris.String
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = t
	}
	return run, nil
}

func (s *Store) candidates(ctx context.Context, runID string) ([]types.CandidateSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT converged, rejection, peak_beta, peak_gamma, total_proper_time, turnaround_time,
			arrival_slip, rendezvous_miss, residual_norm, heading_deg, direction_out,
			phase_boundaries, energy, waypoints
		 FROM candidates WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []types.CandidateSummary
	for rows.Next() {
		var (
			c          types.CandidateSummary
			rejection  sql.NullString
			dirJSON    string
			boundsJSON string
		)
		if err := rows.Scan(&c.Converged, &rejection, &c.PeakBeta, &c.PeakGamma,
			&c.TotalProperTime, &c.TurnaroundTime, &c.ArrivalSlip, &c.RendezvousMiss,
			&c.ResidualNorm, &c.HeadingDeg, &dirJSON, &boundsJSON, &c.Energy, &c.Waypoints); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Rejection = rejection.String
		json.Unmarshal([]byte(dirJSON), &c.DirectionOut)
		json.Unmarshal([]byte(boundsJSON), &c.PhaseBoundaries)
		out = append(out, c)
	}
	return out, rows.Err()
}
