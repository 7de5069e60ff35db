// Package store persists pages in SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver "pgx"
	"github.com/leapstack-labs/leappage/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Store implements core.PageStore on database/sql.
type Store struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

var _ core.PageStore = (*Store)(nil)

// Open connects to the database. For SQLite the dsn is a file path or
// ":memory:"; the parent directory of a file path is created.
func Open(dialect, dsn string, logger *slog.Logger) (*Store, error) {
	var driver string
	switch dialect {
	case DialectSQLite, "":
		dialect, driver = DialectSQLite, "sqlite"
		if !strings.Contains(dsn, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use sqlite or postgres)", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One connection keeps an in-memory database shared and serializes writers.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return New(db, dialect, logger), nil
}

// New wraps an open database.
func New(db *sql.DB, dialect string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dialect returns the SQL dialect.
func (s *Store) Dialect() string {
	return s.dialect
}

// Create stores a new empty page.
func (s *Store) Create(ctx context.Context, name string) (*core.Page, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("page name cannot be empty")
	}

	now := time.Now().UTC()
	page := &core.Page{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO pages (id, name, route, layout, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		page.ID, page.Name, page.Route, page.Layout, "{}", page.CreatedAt, page.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s.logger.Debug("page created", "id", page.ID, "name", name)
	return page, nil
}

// FindByID returns the page with id, or nil, nil when there is none.
func (s *Store) FindByID(ctx context.Context, id string) (*core.Page, error) {
	page := &core.Page{}
	var data string

	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, route, layout, data, created_at, updated_at FROM pages WHERE id = ?`), id,
	).Scan(&page.ID, &page.Name, &page.Route, &page.Layout, &data, &page.CreatedAt, &page.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(data), &page.Data); err != nil {
		return nil, fmt.Errorf("page %s: invalid stored data: %w", id, err)
	}
	return page, nil
}

// Save overwrites the page data and returns the updated page.
func (s *Store) Save(ctx context.Context, page *core.Page, data core.PageData) (*core.Page, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page data: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE pages SET data = ?, updated_at = ? WHERE id = ?`),
		string(encoded), now, page.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save page %s: %w", page.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to save page %s: %w", page.ID, err)
	}
	if n == 0 {
		return nil, &core.NotFoundError{Kind: "page", Key: page.ID}
	}

	saved := *page
	saved.Data = data
	saved.UpdatedAt = now
	s.logger.Debug("page saved", "id", page.ID, "bytes", len(encoded))
	return &saved, nil
}

// ListAll returns every page as an id+name pair, ordered by name.
func (s *Store) ListAll(ctx context.Context) ([]core.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM pages ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pages := []core.PageSummary{}
	for rows.Next() {
		var p core.PageSummary
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
