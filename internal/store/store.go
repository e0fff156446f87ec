// Package store handles SQLite persistence for the stand-in analysis service.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/passintel/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Analysis is one row to record. The plaintext password never reaches the database.
type Analysis struct {
	PasswordHash string
	Strength     model.Strength
	Score        int
	Entropy      float64
	Breached     bool
	CreatedAt    time.Time
}

// HashPassword returns the hex SHA-256 digest stored in place of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Store wraps SQLite access for recorded analyses.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS password_analysis (
			id INTEGER PRIMARY KEY,
			password_hash TEXT NOT NULL,
			strength TEXT NOT NULL,
			score INTEGER NOT NULL,
			entropy REAL NOT NULL,
			breached INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_password_analysis_created_at ON password_analysis(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_password_analysis_score ON password_analysis(score);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAnalysis stores one analysis and returns its id.
func (s *Store) InsertAnalysis(ctx context.Context, a Analysis) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO password_analysis (password_hash, strength, score, entropy, breached, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.PasswordHash,
		string(a.Strength),
		a.Score,
		a.Entropy,
		a.Breached,
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// orderClauses maps sort keys to ORDER BY clauses; id keeps equal keys stable.
var orderClauses = map[model.SortKey]string{
	model.SortByDate:     "created_at DESC, id DESC",
	model.SortByStrength: "strength ASC, id ASC",
	model.SortByScore:    "score DESC, id ASC",
}

// ListAnalyses returns one page of recorded analyses plus the total count.
func (s *Store) ListAnalyses(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error) {
	order, ok := orderClauses[q.SortBy]
	if !ok {
		return model.HistoryPage{}, fmt.Errorf("unsupported sort key %q", q.SortBy)
	}
	if q.Page < 1 || q.PageSize < 1 {
		return model.HistoryPage{}, fmt.Errorf("invalid page %d/%d", q.Page, q.PageSize)
	}

	offset, ok := PageOffset(q.Page, q.PageSize)
	if !ok {
		return model.HistoryPage{}, fmt.Errorf("page %d is out of range", q.Page)
	}

	// One read transaction keeps the count and the rows consistent with each other.
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return model.HistoryPage{}, err
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			// Best-effort rollback of a read-only transaction.
			_ = rerr
		}
	}()

	page := model.HistoryPage{Records: []model.HistoryRecord{}, Page: q.Page, PageSize: q.PageSize}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM password_analysis`).Scan(&page.Total); err != nil {
		return model.HistoryPage{}, err
	}

	query := `SELECT id, strength, score, entropy, breached, created_at
		FROM password_analysis
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	rows, err := tx.QueryContext(ctx, query, q.PageSize, offset)
	if err != nil {
		return model.HistoryPage{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var rec model.HistoryRecord
		var strength, createdAt string
		if err := rows.Scan(&rec.ID, &strength, &rec.Score, &rec.Entropy, &rec.Breached, &createdAt); err != nil {
			return model.HistoryPage{}, err
		}
		ts, err := model.ParseTimestamp(createdAt)
		if err != nil {
			return model.HistoryPage{}, err
		}
		rec.Strength = model.Strength(strength)
		rec.CreatedAt = ts
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return model.HistoryPage{}, err
	}
	return page, nil
}

// PageOffset returns the row offset of a 1-based page. It reports false when
// the offset does not fit in an int.
func PageOffset(page, pageSize int) (int, bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
