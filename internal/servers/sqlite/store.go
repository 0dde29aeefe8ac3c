package sqlite

import (
	"context"
	"fmt"
	"slices"

	"github.com/erauner12/mcp-toolservers/internal/db"
)

// User is a row of the users table
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
	Age  *int64 `json:"age,omitempty"`
}

// UserFilter narrows QueryUsers
type UserFilter struct {
	MinAge int64
	City   string
	Limit  int64
}

// Store is the database adapter behind the sqlite server's tools
type Store struct {
	db *db.DB
}

// NewStore wraps an open database
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// EnsureSchema creates the users table, adding the age column to tables
// created before it existed
func (s *Store) EnsureSchema(ctx context.Context) error {
	idType := "INTEGER PRIMARY KEY"
	if s.db.Dialect() == db.DialectPostgres {
		idType = "BIGSERIAL PRIMARY KEY"
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS users (id %s, name TEXT, city TEXT, age INTEGER)", idType)
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	columns, err := s.db.Columns(ctx, "users")
	if err != nil {
		return fmt.Errorf("inspect users table: %w", err)
	}
	if !slices.Contains(columns, "age") {
		if _, err := s.db.Exec(ctx, "ALTER TABLE users ADD COLUMN age INTEGER"); err != nil {
			return fmt.Errorf("add age column: %w", err)
		}
	}
	return nil
}

// Query runs arbitrary SQL and returns its rows
func (s *Store) Query(ctx context.Context, query string) ([]db.Row, error) {
	return s.db.Execute(ctx, query)
}

// AddUser inserts a user and returns its id
func (s *Store) AddUser(ctx context.Context, user User) (int64, error) {
	var age any
	if user.Age != nil {
		age = *user.Age
	}
	id, err := s.db.InsertID(ctx, "INSERT INTO users (name, city, age) VALUES (?, ?, ?)", user.Name, user.City, age)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// QueryUsers returns users with age >= MinAge, optionally in City, ordered by name
func (s *Store) QueryUsers(ctx context.Context, filter UserFilter) ([]db.Row, error) {
	query := "SELECT name, age FROM users WHERE age >= ?"
	args := []any{filter.MinAge}
	if filter.City != "" {
		query += " AND city = ?"
		args = append(args, filter.City)
	}
	query += " ORDER BY name LIMIT ?"
	args = append(args, filter.Limit)

	return s.db.Execute(ctx, query, args...)
}

// Schema returns the database's CREATE TABLE statements
func (s *Store) Schema(ctx context.Context) (string, error) {
	return s.db.Schema(ctx)
}
