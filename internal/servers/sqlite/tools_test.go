package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erauner12/mcp-toolservers/internal/db"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/server"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
	"github.com/rs/zerolog"
)

type fixture struct {
	store      *Store
	dispatcher *tools.Dispatcher
	resources  *server.Resources
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "users.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := NewStore(database)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	registry := tools.NewRegistry()
	resources := server.NewResources()
	Register(registry, resources, store)

	return &fixture{store: store, dispatcher: tools.NewDispatcher(registry), resources: resources}
}

func (f *fixture) call(t *testing.T, tool string, args map[string]any) tools.Result {
	t.Helper()
	return f.dispatcher.Dispatch(context.Background(), tools.InvocationRequest{Tool: tool, Arguments: args})
}

func (f *fixture) seed(t *testing.T, users ...User) {
	t.Helper()
	for _, user := range users {
		if _, err := f.store.AddUser(context.Background(), user); err != nil {
			t.Fatalf("AddUser() error = %v", err)
		}
	}
}

func age(n int64) *int64 { return &n }

func TestQueryUsers_FiltersByMinAge(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		User{Name: "Bob", City: "Austin", Age: age(20)},
		User{Name: "Alice", City: "Boston", Age: age(30)},
	)

	result := f.call(t, "query_users", map[string]any{"min_age": 25})
	if !result.OK {
		t.Fatalf("Expected success, got %+v", result.Failure)
	}

	rows, ok := result.Payload.([]db.Row)
	if !ok {
		t.Fatalf("Expected []db.Row payload, got %T", result.Payload)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected exactly one user, got %v", rows)
	}
	if rows[0]["name"] != "Alice" || rows[0]["age"] != int64(30) {
		t.Errorf("Expected {name: Alice, age: 30}, got %v", rows[0])
	}
	if _, hasCity := rows[0]["city"]; hasCity {
		t.Error("Expected only name and age columns")
	}
}

func TestQueryUsers_DefaultsOrderingAndCity(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		User{Name: "Carol", City: "Denver", Age: age(41)},
		User{Name: "Alice", City: "Boston", Age: age(30)},
		User{Name: "Bob", City: "Denver", Age: age(20)},
		User{Name: "Nobody", City: "Denver"},
	)

	result := f.call(t, "query_users", nil)
	rows := result.Payload.([]db.Row)
	var names []string
	for _, row := range rows {
		names = append(names, row["name"].(string))
	}
	if strings.Join(names, ",") != "Alice,Bob,Carol" {
		t.Errorf("Expected users with an age ordered by name, got %v", names)
	}

	result = f.call(t, "query_users", map[string]any{"city": "Denver", "limit": 1})
	rows = result.Payload.([]db.Row)
	if len(rows) != 1 || rows[0]["name"] != "Bob" {
		t.Errorf("Expected first Denver user Bob, got %v", rows)
	}
}

func TestQueryUsers_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		args     map[string]any
		wantKind tools.FailureKind
	}{
		{"string min_age", map[string]any{"min_age": "25"}, tools.InvalidArguments},
		{"fractional min_age", map[string]any{"min_age": 2.5}, tools.InvalidArguments},
		{"undeclared parameter", map[string]any{"max_age": 40}, tools.InvalidArguments},
		{"limit out of range", map[string]any{"limit": 0}, tools.BackendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.call(t, "query_users", tt.args)
			if result.Kind() != tt.wantKind {
				t.Errorf("Expected %s, got %+v", tt.wantKind, result)
			}
		})
	}
}

func TestAddUser(t *testing.T) {
	f := newFixture(t)

	result := f.call(t, "add_user", map[string]any{"name": "Dana", "city": "Paris", "age": 33})
	if !result.OK {
		t.Fatalf("Expected success, got %+v", result.Failure)
	}
	payload := result.Payload.(map[string]any)
	if payload["id"] != int64(1) || payload["message"] != "User 'Dana' from 'Paris' added successfully." {
		t.Errorf("Unexpected payload: %v", payload)
	}

	result = f.call(t, "add_user", map[string]any{"name": "Eve", "city": "Rome"})
	if !result.OK {
		t.Fatalf("Expected success without age, got %+v", result.Failure)
	}

	rows, err := f.store.Query(context.Background(), "SELECT name, age FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 2 || rows[0]["age"] != int64(33) || rows[1]["age"] != nil {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestAddUser_MissingCity(t *testing.T) {
	f := newFixture(t)

	result := f.call(t, "add_user", map[string]any{"name": "Dana"})
	if result.Kind() != tools.InvalidArguments || result.Failure.Reason != tools.ReasonMissingParameter {
		t.Fatalf("Expected MissingParameter, got %+v", result)
	}

	rows, _ := f.store.Query(context.Background(), "SELECT COUNT(*) AS n FROM users")
	if rows[0]["n"] != int64(0) {
		t.Errorf("Expected no insert, got %v", rows)
	}
}

func TestQueryData(t *testing.T) {
	f := newFixture(t)
	f.seed(t, User{Name: "Alice", City: "Boston", Age: age(30)})

	result := f.call(t, "query_data", map[string]any{"sql": "SELECT name, city FROM users"})
	if !result.OK {
		t.Fatalf("Expected success, got %+v", result.Failure)
	}
	rows := result.Payload.([]db.Row)
	if len(rows) != 1 || rows[0]["city"] != "Boston" {
		t.Errorf("Unexpected rows: %v", rows)
	}

	result = f.call(t, "query_data", map[string]any{"sql": "SELECT * FROM missing_table"})
	if result.Kind() != tools.BackendError || !strings.Contains(result.Failure.Message, "missing_table") {
		t.Errorf("Expected BackendError naming the table, got %+v", result.Failure)
	}

	result = f.call(t, "query_data", map[string]any{"sql": "   "})
	if result.Kind() != tools.BackendError {
		t.Errorf("Expected BackendError for blank sql, got %+v", result)
	}
}

func TestSchemaResource(t *testing.T) {
	f := newFixture(t)

	contents, err := f.resources.Read(context.Background(), SchemaURI)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.Contains(contents.Text, "CREATE TABLE users") || !strings.Contains(contents.Text, "age INTEGER") {
		t.Errorf("Unexpected schema: %s", contents.Text)
	}
}

func TestEnsureSchema_AddsAgeToLegacyTable(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "legacy.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, city TEXT)"); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	store := NewStore(database)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() must be idempotent, got %v", err)
	}

	columns, _ := database.Columns(ctx, "users")
	if strings.Join(columns, ",") != "id,name,city,age" {
		t.Errorf("Unexpected columns: %v", columns)
	}
}
