package doapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/client"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/rs/zerolog"
)

// EnginePostgres is the engine slug of PostgreSQL clusters
const EnginePostgres = "pg"

var errEmptyID = errors.New("id cannot be empty")

// App is an App Platform application
type App struct {
	ID   string `json:"id"`
	Spec struct {
		Name string `json:"name"`
	} `json:"spec"`
	Region struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"region"`
	DefaultIngress   string      `json:"default_ingress,omitempty"`
	LiveURL          string      `json:"live_url,omitempty"`
	ActiveDeployment *Deployment `json:"active_deployment,omitempty"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
}

// Deployment is one App Platform deployment
type Deployment struct {
	ID       string `json:"id"`
	Phase    string `json:"phase"`
	Cause    string `json:"cause,omitempty"`
	Progress struct {
		SuccessSteps int `json:"success_steps"`
		TotalSteps   int `json:"total_steps"`
	} `json:"progress"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Database is a managed database cluster. Connection passwords are never decoded.
type Database struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Engine     string `json:"engine"`
	Version    string `json:"version"`
	Region     string `json:"region"`
	Status     string `json:"status"`
	Size       string `json:"size"`
	NumNodes   int    `json:"num_nodes"`
	CreatedAt  string `json:"created_at"`
	Connection *struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Database string `json:"database"`
		User     string `json:"user"`
		SSL      bool   `json:"ssl"`
	} `json:"connection,omitempty"`
}

// DatabaseUser is a user of a database cluster
type DatabaseUser struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// DatabaseCreate describes a new cluster
type DatabaseCreate struct {
	Name     string `json:"name"`
	Engine   string `json:"engine"`
	Version  string `json:"version"`
	Region   string `json:"region"`
	Size     string `json:"size"`
	NumNodes int    `json:"num_nodes"`
}

// DatabaseCredentials is a user as returned on creation or password reset
type DatabaseCredentials struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password"`
}

// ConnectionPool is a PgBouncer pool of a cluster
type ConnectionPool struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Size       int    `json:"size"`
	DB         string `json:"db"`
	User       string `json:"user"`
	Connection *struct {
		URI string `json:"uri"`
	} `json:"connection,omitempty"`
}

// Balance is the customer balance. Amounts are decimal strings as returned by the API.
type Balance struct {
	MonthToDateBalance string `json:"month_to_date_balance"`
	AccountBalance     string `json:"account_balance"`
	MonthToDateUsage   string `json:"month_to_date_usage"`
	GeneratedAt        string `json:"generated_at"`
}

// BillingEntry is one billing history record
type BillingEntry struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	InvoiceUUID string `json:"invoice_uuid,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

// Invoice is one monthly invoice
type Invoice struct {
	InvoiceUUID   string `json:"invoice_uuid"`
	InvoiceID     string `json:"invoice_id,omitempty"`
	Amount        string `json:"amount"`
	InvoicePeriod string `json:"invoice_period"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Client talks to the DigitalOcean v2 API
type Client struct {
	http *client.HTTPClient
}

// NewClient creates a client authenticated with cfg.APIToken
func NewClient(cfg config.DigitalOceanConfig, logger zerolog.Logger) *Client {
	return &Client{
		http: client.NewHTTPClient(cfg.BaseURL,
			client.WithAuth(client.BearerToken(cfg.APIToken)),
			client.WithLogger(logger.With().Str("backend", "digitalocean").Logger()),
		),
	}
}

// ListApps returns every app in the account
func (c *Client) ListApps(ctx context.Context) ([]App, error) {
	var resp struct {
		Apps []App `json:"apps"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "apps", nil, &resp); err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return resp.Apps, nil
}

// GetApp returns one app
func (c *Client) GetApp(ctx context.Context, appID string) (App, error) {
	if appID == "" {
		return App{}, fmt.Errorf("app %w", errEmptyID)
	}
	var resp struct {
		App App `json:"app"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "apps/"+url.PathEscape(appID), nil, &resp); err != nil {
		return App{}, fmt.Errorf("get app %s: %w", appID, err)
	}
	return resp.App, nil
}

// ListDeployments returns the deployments of an app, newest first
func (c *Client) ListDeployments(ctx context.Context, appID string) ([]Deployment, error) {
	if appID == "" {
		return nil, fmt.Errorf("app %w", errEmptyID)
	}
	var resp struct {
		Deployments []Deployment `json:"deployments"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "apps/"+url.PathEscape(appID)+"/deployments", nil, &resp); err != nil {
		return nil, fmt.Errorf("list deployments of %s: %w", appID, err)
	}
	return resp.Deployments, nil
}

// CreateDeployment triggers a new deployment of an app
func (c *Client) CreateDeployment(ctx context.Context, appID string) (Deployment, error) {
	if appID == "" {
		return Deployment{}, fmt.Errorf("app %w", errEmptyID)
	}
	var resp struct {
		Deployment Deployment `json:"deployment"`
	}
	body := map[string]any{"force_build": false}
	if err := c.http.DoJSON(ctx, http.MethodPost, "apps/"+url.PathEscape(appID)+"/deployments", body, &resp); err != nil {
		return Deployment{}, fmt.Errorf("deploy app %s: %w", appID, err)
	}
	return resp.Deployment, nil
}

// DeleteApp deletes an app
func (c *Client) DeleteApp(ctx context.Context, appID string) error {
	if appID == "" {
		return fmt.Errorf("app %w", errEmptyID)
	}
	if err := c.http.DoJSON(ctx, http.MethodDelete, "apps/"+url.PathEscape(appID), nil, nil); err != nil {
		return fmt.Errorf("delete app %s: %w", appID, err)
	}
	return nil
}

// ListDatabases returns the PostgreSQL clusters of the account
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var resp struct {
		Databases []Database `json:"databases"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "databases?type="+EnginePostgres, nil, &resp); err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	// The listing is not filtered server-side for every account
	databases := make([]Database, 0, len(resp.Databases))
	for _, db := range resp.Databases {
		if db.Engine == EnginePostgres {
			databases = append(databases, db)
		}
	}
	return databases, nil
}

// CreateDatabase provisions a new cluster
func (c *Client) CreateDatabase(ctx context.Context, req DatabaseCreate) (Database, error) {
	var resp struct {
		Database Database `json:"database"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, "databases", req, &resp); err != nil {
		return Database{}, fmt.Errorf("create database %s: %w", req.Name, err)
	}
	return resp.Database, nil
}

// DeleteDatabase destroys a cluster
func (c *Client) DeleteDatabase(ctx context.Context, dbID string) error {
	if dbID == "" {
		return fmt.Errorf("database %w", errEmptyID)
	}
	if err := c.http.DoJSON(ctx, http.MethodDelete, "databases/"+url.PathEscape(dbID), nil, nil); err != nil {
		return fmt.Errorf("delete database %s: %w", dbID, err)
	}
	return nil
}

// GetDatabase returns one cluster
func (c *Client) GetDatabase(ctx context.Context, dbID string) (Database, error) {
	if dbID == "" {
		return Database{}, fmt.Errorf("database %w", errEmptyID)
	}
	var resp struct {
		Database Database `json:"database"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "databases/"+url.PathEscape(dbID), nil, &resp); err != nil {
		return Database{}, fmt.Errorf("get database %s: %w", dbID, err)
	}
	return resp.Database, nil
}

// ListDatabaseUsers returns the users of a cluster
func (c *Client) ListDatabaseUsers(ctx context.Context, dbID string) ([]DatabaseUser, error) {
	var resp struct {
		Users []DatabaseUser `json:"users"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "databases/"+url.PathEscape(dbID)+"/users", nil, &resp); err != nil {
		return nil, fmt.Errorf("list users of %s: %w", dbID, err)
	}
	return resp.Users, nil
}

// CreateDatabaseUser adds a user to a cluster; the password is only returned here
func (c *Client) CreateDatabaseUser(ctx context.Context, dbID, username string) (DatabaseCredentials, error) {
	if dbID == "" {
		return DatabaseCredentials{}, fmt.Errorf("database %w", errEmptyID)
	}
	var resp struct {
		User DatabaseCredentials `json:"user"`
	}
	body := map[string]string{"name": username}
	if err := c.http.DoJSON(ctx, http.MethodPost, "databases/"+url.PathEscape(dbID)+"/users", body, &resp); err != nil {
		return DatabaseCredentials{}, fmt.Errorf("create user %s on %s: %w", username, dbID, err)
	}
	return resp.User, nil
}

// ResetDatabaseUserPassword rotates a user's password
func (c *Client) ResetDatabaseUserPassword(ctx context.Context, dbID, username string) (DatabaseCredentials, error) {
	if dbID == "" {
		return DatabaseCredentials{}, fmt.Errorf("database %w", errEmptyID)
	}
	var resp struct {
		User DatabaseCredentials `json:"user"`
	}
	path := "databases/" + url.PathEscape(dbID) + "/users/" + url.PathEscape(username) + "/reset_auth"
	if err := c.http.DoJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return DatabaseCredentials{}, fmt.Errorf("reset password of %s on %s: %w", username, dbID, err)
	}
	return resp.User, nil
}

// CreateConnectionPool adds a connection pool to a cluster
func (c *Client) CreateConnectionPool(ctx context.Context, dbID string, pool ConnectionPool) (ConnectionPool, error) {
	if dbID == "" {
		return ConnectionPool{}, fmt.Errorf("database %w", errEmptyID)
	}
	var resp struct {
		Pool ConnectionPool `json:"pool"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, "databases/"+url.PathEscape(dbID)+"/pools", pool, &resp); err != nil {
		return ConnectionPool{}, fmt.Errorf("create pool %s on %s: %w", pool.Name, dbID, err)
	}
	return resp.Pool, nil
}

// Balance returns the current account balance
func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var resp Balance
	if err := c.http.DoJSON(ctx, http.MethodGet, "customers/my/balance", nil, &resp); err != nil {
		return Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return resp, nil
}

// BillingHistory returns up to limit billing records
func (c *Client) BillingHistory(ctx context.Context, limit int) ([]BillingEntry, error) {
	var resp struct {
		BillingHistory []BillingEntry `json:"billing_history"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "customers/my/billing_history?per_page="+strconv.Itoa(limit), nil, &resp); err != nil {
		return nil, fmt.Errorf("get billing history: %w", err)
	}
	return truncate(resp.BillingHistory, limit), nil
}

// Invoices returns up to limit invoices
func (c *Client) Invoices(ctx context.Context, limit int) ([]Invoice, error) {
	var resp struct {
		Invoices []Invoice `json:"invoices"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, "customers/my/invoices?per_page="+strconv.Itoa(limit), nil, &resp); err != nil {
		return nil, fmt.Errorf("get invoices: %w", err)
	}
	return truncate(resp.Invoices, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if items == nil {
		return []T{}
	}
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
