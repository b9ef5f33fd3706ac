package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/engine"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id            TEXT PRIMARY KEY,
	domain        TEXT NOT NULL,
	label         TEXT NOT NULL,
	confidence    REAL NOT NULL,
	reasons_json  TEXT NOT NULL,
	signals_json  TEXT,
	overridden    INTEGER NOT NULL DEFAULT 0,
	text_hash     TEXT NOT NULL,
	text_length   INTEGER NOT NULL,
	duration_ms   INTEGER,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS predictions_created ON predictions(created_at);

CREATE TABLE IF NOT EXISTS factcheck_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	prediction_id  TEXT NOT NULL,
	position       INTEGER NOT NULL,
	provider       TEXT NOT NULL,
	status         TEXT NOT NULL,
	rating         TEXT,
	delta          REAL NOT NULL,
	reason         TEXT,
	error          TEXT,
	cached         INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (prediction_id) REFERENCES predictions(id)
);
`

// #endregion schema

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct

// Store is the prediction audit log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// Open opens a SQLite database and runs migrations. ":memory:" works for
// tests and one-shot CLI runs.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
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

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// #endregion constructor

// #region record

// Record implements engine.Recorder. The prediction row and its fact-check
// rows are written in one transaction.
func (s *Store) Record(ctx context.Context, sub content.Submission, res engine.Result) error {
	reasons, err := json.Marshal(res.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	sigs, err := json.Marshal(res.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO predictions (id, domain, label, confidence, reasons_json, signals_json, overridden, text_hash, text_length, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, string(res.Domain), res.Label, res.Confidence, string(reasons), string(sigs),
		boolInt(res.Overridden), HashText(sub.Text), utf8.RuneCountInString(sub.Text),
		res.Duration.Milliseconds(), res.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	for i, o := range res.FactChecks {
		var errText string
		if o.Err != nil {
			errText = o.Err.Error()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO factcheck_log (prediction_id, position, provider, status, rating, delta, reason, error, cached)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.ID, i, o.Provider, string(o.Status), nullIfEmpty(o.Verdict.Rating), o.Delta,
			nullIfEmpty(o.Reason), nullIfEmpty(errText), boolInt(o.Cached),
		)
		if err != nil {
			return fmt.Errorf("insert fact-check %s: %w", o.Provider, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion record

// #region get

// Get loads one prediction with its fact-check outcomes.
func (s *Store) Get(ctx context.Context, id string) (Prediction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, label, confidence, reasons_json, overridden, text_hash, text_length, created_at
		 FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Prediction{}, ErrNotFound
	}
	if err != nil {
		return Prediction{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, status, rating, delta, reason
		 FROM factcheck_log WHERE prediction_id = ? ORDER BY position`, id)
	if err != nil {
		return Prediction{}, fmt.Errorf("query fact-checks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e FactCheckEntry
		var rating, reason sql.NullString
		if err := rows.Scan(&e.Provider, &e.Status, &rating, &e.Delta, &reason); err != nil {
			return Prediction{}, fmt.Errorf("scan fact-check: %w", err)
		}
		e.Rating, e.Reason = rating.String, reason.String
		p.FactChecks = append(p.FactChecks, e)
	}
	return p, rows.Err()
}

// #endregion get

// #region recent

// Recent returns up to limit predictions, newest first. An empty domain
// matches all domains.
func (s *Store) Recent(ctx context.Context, domain content.Domain, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, label, confidence, reasons_json, overridden, text_hash, text_length, created_at
		 FROM predictions WHERE (? = '' OR domain = ?)
		 ORDER BY created_at DESC, id LIMIT ?`,
		string(domain), string(domain), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats counts stored predictions per domain and label.
func (s *Store) Stats(ctx context.Context) ([]LabelCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, label, COUNT(*) FROM predictions GROUP BY domain, label ORDER BY domain, label`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []LabelCount
	for rows.Next() {
		var c LabelCount
		var domain string
		if err := rows.Scan(&domain, &c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		c.Domain = content.Domain(domain)
		out = append(out, c)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (Prediction, error) {
	var p Prediction
	var domain, reasons, createdAt string
	var overridden int
	err := sc.Scan(&p.ID, &domain, &p.Label, &p.Confidence, &reasons, &overridden, &p.TextHash, &p.TextLength, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Prediction{}, err
		}
		return Prediction{}, fmt.Errorf("scan prediction: %w", err)
	}
	p.Domain = content.Domain(domain)
	p.Overridden = overridden != 0
	if err := json.Unmarshal([]byte(reasons), &p.Reasons); err != nil {
		return Prediction{}, fmt.Errorf("unmarshal reasons: %w", err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Prediction{}, fmt.Errorf("parse created_at: %w", err)
	}
	return p, nil
}

// HashText returns the hex SHA-256 of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
