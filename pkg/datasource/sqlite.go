package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/vgrid/pkg/grid"

	_ "modernc.org/sqlite"
)

// SQLiteConfig configures a SQLite source.
type SQLiteConfig struct {
	// Path is the database file. ":memory:" opens a private in-memory database.
	Path string

	// Query selects the items. Defaults to "SELECT * FROM items".
	Query string

	// BoolColumns are decoded from SQLite integers into bool.
	BoolColumns []string
}

// SQLite reads items from a SQLite database. Each result row becomes one
// item keyed by column name.
type SQLite struct {
	db    *sql.DB
	query string
	bools map[string]bool
}

// OpenSQLite opens the database and applies the connection pragmas.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("datasource: sqlite path is empty")
	}
	// modernc.org/sqlite registers the "sqlite" driver.
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("datasource: open sqlite: %w", err)
	}
	if cfg.Path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("datasource: %s: %w", p, err)
		}
	}

	query := cfg.Query
	if query == "" {
		query = "SELECT * FROM items"
	}
	s := &SQLite{db: db, query: query, bools: make(map[string]bool)}
	for _, c := range cfg.BoolColumns {
		s.bools[c] = true
	}
	return s, nil
}

// DB returns the underlying database handle.
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Items implements grid.Source.
func (s *SQLite) Items(ctx context.Context) ([]grid.Item, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("datasource: query items: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var items []grid.Item
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("datasource: scan item: %w", err)
		}
		item := make(grid.Item, len(cols))
		for i, c := range cols {
			item[c] = s.convert(c, values[i])
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datasource: read items: %w", err)
	}
	return items, nil
}

func (s *SQLite) convert(col string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if s.bools[col] {
		switch n := v.(type) {
		case int64:
			return n != 0
		case string:
			return n == "1" || strings.EqualFold(n, "true")
		}
	}
	return v
}

// Seed creates table with one column per item field and inserts items. It
// is meant for demos and benchmarks; column types follow the first item.
func (s *SQLite) Seed(ctx context.Context, table string, items []grid.Item) error {
	if len(items) == 0 {
		return nil
	}
	cols := make([]string, 0, len(items[0]))
	for k := range items[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%q %s", c, sqliteType(items[0][c]))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("datasource: create %s: %w", table, err)
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		args := make([]any, len(cols))
		for i, c := range cols {
			args[i] = it[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("datasource: insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func sqliteType(v any) string {
	switch v.(type) {
	case int, int64, bool:
		return "INTEGER"
	case float64, float32:
		return "REAL"
	default:
		return "TEXT"
	}
}
