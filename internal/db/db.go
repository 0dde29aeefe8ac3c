// Package db is the storage layer behind the sqlite tool server. It speaks
// SQLite through modernc.org/sqlite by default and PostgreSQL through pgx
// when given a postgres:// URL.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Dialects
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// ErrEmptyDSN is returned by Open when no connection string is configured
var ErrEmptyDSN = errors.New("database connection string is empty")

// Row is one result row keyed by column name
type Row map[string]any

// DB wraps a database/sql handle with the dialect it speaks
type DB struct {
	conn    *sql.DB
	pool    *pgxpool.Pool
	dialect string
}

// Open connects to dsn. postgres:// and postgresql:// URLs open a pgx pool;
// anything else is treated as a SQLite path.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	if IsPostgresURL(dsn) {
		conn, pool, err := openPostgres(ctx, dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &DB{conn: conn, pool: pool, dialect: DialectPostgres}, nil
	}

	conn, err := openSQLite(dsn, logger)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn, dialect: DialectSQLite}, nil
}

// IsPostgresURL reports whether dsn selects the PostgreSQL backend
func IsPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Dialect returns DialectSQLite or DialectPostgres
func (d *DB) Dialect() string {
	return d.dialect
}

// Close releases the connection (and pool, for postgres)
func (d *DB) Close() error {
	err := d.conn.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Execute runs a query and returns every row. Placeholders are written as ?
// and rewritten for postgres when args are given.
func (d *DB) Execute(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := d.conn.QueryContext(ctx, d.rebind(query, args), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Exec runs a statement and returns the number of affected rows
func (d *DB) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := d.conn.ExecContext(ctx, d.rebind(stmt, args), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertID runs an INSERT and returns the generated id column
func (d *DB) InsertID(ctx context.Context, stmt string, args ...any) (int64, error) {
	if d.dialect == DialectPostgres {
		var id int64
		err := d.conn.QueryRowContext(ctx, d.rebind(stmt, args)+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	res, err := d.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Columns returns the column names of table, or an empty slice if it does not exist
func (d *DB) Columns(ctx context.Context, table string) ([]string, error) {
	var (
		rows []Row
		err  error
		key  string
	)
	if d.dialect == DialectPostgres {
		rows, err = d.Execute(ctx,
			"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? ORDER BY ordinal_position",
			table)
		key = "column_name"
	} else {
		rows, err = d.Execute(ctx, "SELECT name FROM pragma_table_info(?)", table)
		key = "name"
	}
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row[key].(string); ok {
			columns = append(columns, name)
		}
	}
	return columns, nil
}

// Schema returns the CREATE TABLE statements of every table, newline-joined
func (d *DB) Schema(ctx context.Context) (string, error) {
	if d.dialect == DialectPostgres {
		return d.postgresSchema(ctx)
	}

	rows, err := d.Execute(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND sql IS NOT NULL ORDER BY name")
	if err != nil {
		return "", err
	}

	statements := make([]string, 0, len(rows))
	for _, row := range rows {
		if stmt, ok := row["sql"].(string); ok && stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return strings.Join(statements, "\n"), nil
}

// postgresSchema renders information_schema as CREATE TABLE statements
func (d *DB) postgresSchema(ctx context.Context) (string, error) {
	rows, err := d.Execute(ctx,
		`SELECT table_name, column_name, data_type FROM information_schema.columns
		 WHERE table_schema = current_schema() ORDER BY table_name, ordinal_position`)
	if err != nil {
		return "", err
	}

	var (
		statements []string
		current    string
		columns    []string
	)
	flush := func() {
		if current != "" {
			statements = append(statements, fmt.Sprintf("CREATE TABLE %s (%s)", current, strings.Join(columns, ", ")))
		}
	}
	for _, row := range rows {
		table, _ := row["table_name"].(string)
		if table != current {
			flush()
			current = table
			columns = nil
		}
		columns = append(columns, fmt.Sprintf("%v %v", row["column_name"], strings.ToUpper(fmt.Sprint(row["data_type"]))))
	}
	flush()

	return strings.Join(statements, "\n"), nil
}

// rebind rewrites ? placeholders to $n for postgres. Raw queries without
// arguments are passed through untouched.
func (d *DB) rebind(query string, args []any) string {
	if d.dialect != DialectPostgres || len(args) == 0 {
		return query
	}
	return Rebind(query)
}

// Rebind rewrites ? placeholders outside quoted strings as $1, $2, ...
func Rebind(query string) string {
	var (
		b       strings.Builder
		n       int
		inQuote rune
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
		case r == '\'' || r == '"':
			inQuote = r
		case r == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case []byte:
		return string(value)
	case time.Time:
		return value.UTC().Format(time.RFC3339Nano)
	default:
		return value
	}
}
