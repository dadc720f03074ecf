// Package store keeps a history of finished sessions in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// SessionRow is one finished (or abandoned) session.
type SessionRow struct {
	ID          string
	Seed        int64
	Outcome     string
	Description string
	Duration    float64
	Pages       int
	Relocations int
	PeakThreat  float64
	BatteryLeft float64
	CreatedAt   time.Time
}

// Summary aggregates every stored session.
type Summary struct {
	Sessions    int
	Wins        int
	Caught      int
	Darkness    int
	AvgDuration float64
	AvgPages    float64
	BestWin     float64 // shortest winning run in seconds, 0 when there is none
}

// Open opens (or creates) the database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		seed INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		relocations INTEGER NOT NULL DEFAULT 0,
		peak_threat REAL NOT NULL DEFAULT 0,
		battery_left REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RowFromReport builds a row from an outcome report.
func RowFromReport(id string, seed int64, rep sim.OutcomeReport) SessionRow {
	return SessionRow{
		ID:          id,
		Seed:        seed,
		Outcome:     rep.Outcome.String(),
		Description: rep.Description,
		Duration:    rep.Duration,
		Pages:       rep.Pages,
		Relocations: rep.Relocations,
		PeakThreat:  rep.PeakThreat,
		BatteryLeft: rep.BatteryLeft,
	}
}

// Insert stores a session. Ids are unique; inserting the same id twice fails.
func (db *DB) Insert(r SessionRow) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, seed, outcome, description, duration, pages, relocations, peak_threat, battery_left)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Seed, r.Outcome, r.Description, r.Duration, r.Pages, r.Relocations, r.PeakThreat, r.BatteryLeft,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (db *DB) Recent(limit int) ([]SessionRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, seed, outcome, description, duration, pages, relocations, peak_threat, battery_left, created_at
		FROM sessions ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Seed, &r.Outcome, &r.Description, &r.Duration, &r.Pages,
			&r.Relocations, &r.PeakThreat, &r.BatteryLeft, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates the whole history.
func (db *DB) Summary() (Summary, error) {
	var s Summary
	var best sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration), 0),
			COALESCE(AVG(pages), 0),
			MIN(CASE WHEN outcome = ? THEN duration END)
		FROM sessions`,
		sim.OutcomeWon.String(), sim.OutcomeCaught.String(), sim.OutcomeBatteryDepleted.String(), sim.OutcomeWon.String(),
	).Scan(&s.Sessions, &s.Wins, &s.Caught, &s.Darkness, &s.AvgDuration, &s.AvgPages, &best)
	if err != nil {
		return Summary{}, err
	}
	if best.Valid {
		s.BestWin = best.Float64
	}
	return s, nil
}
