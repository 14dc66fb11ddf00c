// Package indexdb maintains a read-model index of runs, results and
// progress in SQLite. Writes go through a single background goroutine so
// the search never stalls on the database.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqResult
	reqProgress
	reqFinished
)

type req struct {
	kind reqKind

	run      RunRow
	runID    string
	seed     int64
	cursor   int64
	done     uint64
	total    uint64
	complete bool
}

// RunRow describes one search run.
type RunRow struct {
	RunID       string
	StartedAt   string
	MC          string
	Mode        int
	Threads     int
	CondsDigest string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: a burst of hits must not stall the controller.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			mc TEXT NOT NULL,
			mode INTEGER NOT NULL,
			threads INTEGER NOT NULL,
			conds_digest TEXT NOT NULL,
			finished_at TEXT,
			complete INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			found_at TEXT NOT NULL,
			PRIMARY KEY (run_id, seed)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_seed ON results(seed);`,
		`CREATE TABLE IF NOT EXISTS progress (
			run_id TEXT NOT NULL,
			cursor INTEGER NOT NULL,
			done INTEGER NOT NULL,
			total INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, cursor)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		now := time.Now().UTC().Format(time.RFC3339)
		switch r.kind {
		case reqRun:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO runs(run_id, started_at, mc, mode, threads, conds_digest) VALUES(?,?,?,?,?,?)`,
				r.run.RunID, r.run.StartedAt, r.run.MC, r.run.Mode, r.run.Threads, r.run.CondsDigest)
		case reqResult:
			_, _ = s.db.Exec(
				`INSERT OR IGNORE INTO results(run_id, seed, found_at) VALUES(?,?,?)`,
				r.runID, r.seed, now)
		case reqProgress:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO progress(run_id, cursor, done, total, recorded_at) VALUES(?,?,?,?,?)`,
				r.runID, r.cursor, int64(r.done), int64(r.total), now)
		case reqFinished:
			_, _ = s.db.Exec(
				`UPDATE runs SET finished_at=?, complete=? WHERE run_id=?`,
				now, boolInt(r.complete), r.runID)
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) send(r req) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Index writes are best-effort; dropping beats stalling a search.
	}
}

func (s *SQLiteIndex) RecordRun(run RunRow) { s.send(req{kind: reqRun, run: run}) }

func (s *SQLiteIndex) RecordResult(runID string, seed int64) {
	s.send(req{kind: reqResult, runID: runID, seed: seed})
}
func (s *SQLiteIndex) RecordProgress(runID string, cursor int64, done, total uint64) {
	s.send(req{kind: reqProgress, runID: runID, cursor: cursor, done: done, total: total})
}
func (s *SQLiteIndex) RecordFinished(runID string, complete bool) {
	s.send(req{kind: reqFinished, runID: runID, complete: complete})
}

// ResultSeeds reads back a run's result seeds, insertion order lost (the
// table is a read model, not the result sink).
func (s *SQLiteIndex) ResultSeeds(runID string) ([]int64, error) {
	rows, err := s.db.Query(`SELECT seed FROM results WHERE run_id=? ORDER BY seed`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var seed int64
		if err := rows.Scan(&seed); err != nil {
			return nil, err
		}
		out = append(out, seed)
	}
	return out, rows.Err()
}

// Close drains pending writes and shuts the database down.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
