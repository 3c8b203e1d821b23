// Package store keeps a history of IntCode programs and the runs made
// against them in a SQLite database.
//
// Programs are content addressed by the SHA-256 of their normalized text, so
// storing the same program twice yields one row. The most recent run's
// program is what LastProgram returns; the CLI uses it when invoked without
// a program.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chazu/intcode/pkg/intcode"
)

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	hash       TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	size       INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	program_hash TEXT NOT NULL REFERENCES programs(hash),
	input        INTEGER NOT NULL,
	state        TEXT NOT NULL,
	outputs      TEXT NOT NULL,
	fault        TEXT NOT NULL,
	steps        INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Store is a run history database. It is not safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one recorded execution.
type Run struct {
	ID          string
	ProgramHash string
	Input       int64
	State       string
	Outputs     []int64
	Fault       string
	Steps       int64
	CreatedAt   time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashProgram returns the content address of a program.
func HashProgram(mem *intcode.Memory) string {
	sum := sha256.Sum256([]byte(mem.String()))
	return hex.EncodeToString(sum[:])
}

// SaveProgram stores the program in its normalized text form and returns
// its hash.
func (s *Store) SaveProgram(mem *intcode.Memory) (string, error) {
	hash := HashProgram(mem)
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO programs (hash, text, size, created_at) VALUES (?, ?, ?, ?)`,
		hash, mem.String(), mem.Len(), s.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("store: save program: %w", err)
	}
	return hash, nil
}

// Program loads a stored program by hash.
func (s *Store) Program(hash string) (*intcode.Memory, error) {
	var text string
	err := s.db.QueryRow(`SELECT text FROM programs WHERE hash = ?`, hash).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: program %s not found", hash)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load program: %w", err)
	}
	return intcode.Load(text)
}

// RecordRun saves the outcome of a run of program with the given input.
// program is the memory as loaded, before the engine mutated its copy.
// The engine must be in a terminal state.
func (s *Store) RecordRun(program *intcode.Memory, input int64, e *intcode.Engine) (*Run, error) {
	if e.State() == intcode.StateRunning {
		return nil, fmt.Errorf("store: cannot record a run that is still running")
	}
	hash, err := s.SaveProgram(program)
	if err != nil {
		return nil, err
	}

	r := &Run{
		ID:          uuid.New().String(),
		ProgramHash: hash,
		Input:       input,
		State:       e.State().String(),
		Outputs:     e.Channel().Outputs(),
		Steps:       e.Steps(),
		CreatedAt:   s.now().UTC(),
	}
	if err := e.Err(); err != nil {
		r.Fault = err.Error()
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, program_hash, input, state, outputs, fault, steps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProgramHash, r.Input, r.State, intcode.Format(r.Outputs),
		r.Fault, r.Steps, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("store: record run: %w", err)
	}
	return r, nil
}

// LastProgram returns the program of the most recent run, or nil if the
// history is empty.
func (s *Store) LastProgram() (*intcode.Memory, error) {
	var hash string
	err := s.db.QueryRow(`SELECT program_hash FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: last program: %w", err)
	}
	return s.Program(hash)
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, program_hash, input, state, outputs, fault, steps, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			r       Run
			outputs string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.ProgramHash, &r.Input, &r.State, &outputs, &r.Fault, &r.Steps, &created); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if outputs != "" {
			words, err := intcode.Parse(outputs)
			if err != nil {
				return nil, fmt.Errorf("store: run %s outputs: %w", r.ID, err)
			}
			r.Outputs = words
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
