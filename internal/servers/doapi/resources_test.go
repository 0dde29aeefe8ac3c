package doapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/server"
	"github.com/rs/zerolog"
)

func newTestResources(t *testing.T) (*server.Resources, *fakeDO) {
	t.Helper()
	fake := &fakeDO{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	cfg := config.DigitalOceanConfig{APIToken: "dop_v1_test", BaseURL: ts.URL + "/v2/"}
	resources := server.NewResources()
	RegisterResources(resources, NewClient(cfg, zerolog.Nop()))
	return resources, fake
}

func TestRegisterResources_List(t *testing.T) {
	resources, _ := newTestResources(t)

	want := []string{"apps://list", "databases://list", "billing://summary", "billing://history", "billing://invoices"}
	descriptors := resources.List()
	if len(descriptors) != len(want) {
		t.Fatalf("Expected %d resources, got %d", len(want), len(descriptors))
	}
	for i, uri := range want {
		if descriptors[i].URI != uri {
			t.Errorf("Expected resource %d to be %s, got %s", i, uri, descriptors[i].URI)
		}
		if descriptors[i].MimeType != "application/json" {
			t.Errorf("%s: expected application/json, got %s", uri, descriptors[i].MimeType)
		}
	}
}

func TestRegisterResources_Read(t *testing.T) {
	tests := []struct {
		uri      string
		requests []string
		check    func(t *testing.T, text string)
	}{
		{
			uri:      "apps://list",
			requests: []string{"GET /v2/apps"},
			check: func(t *testing.T, text string) {
				var apps []AppSummary
				if err := json.Unmarshal([]byte(text), &apps); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if len(apps) != 1 || apps[0].Name != "web" {
					t.Errorf("Unexpected apps: %+v", apps)
				}
			},
		},
		{
			uri:      "databases://list",
			requests: []string{"GET /v2/databases?type=pg"},
			check: func(t *testing.T, text string) {
				var databases []Database
				if err := json.Unmarshal([]byte(text), &databases); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if len(databases) != 1 || databases[0].ID != "db-1" {
					t.Errorf("Unexpected databases: %+v", databases)
				}
			},
		},
		{
			uri:      "billing://summary",
			requests: []string{"GET /v2/customers/my/balance", "GET /v2/customers/my/billing_history?per_page=10"},
			check: func(t *testing.T, text string) {
				var summary struct {
					Balance Balance        `json:"balance"`
					History []BillingEntry `json:"recent_billing_history"`
				}
				if err := json.Unmarshal([]byte(text), &summary); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if summary.Balance.AccountBalance != "12.23" || len(summary.History) != 10 {
					t.Errorf("Unexpected summary: %+v", summary)
				}
			},
		},
		{
			uri:      "billing://history",
			requests: []string{"GET /v2/customers/my/billing_history?per_page=200"},
			check: func(t *testing.T, text string) {
				var history []BillingEntry
				if err := json.Unmarshal([]byte(text), &history); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if len(history) != 12 {
					t.Errorf("Expected 12 entries, got %d", len(history))
				}
			},
		},
		{
			uri:      "billing://invoices",
			requests: []string{"GET /v2/customers/my/invoices?per_page=200"},
			check: func(t *testing.T, text string) {
				var invoices []Invoice
				if err := json.Unmarshal([]byte(text), &invoices); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if len(invoices) != 8 {
					t.Errorf("Expected 8 invoices, got %d", len(invoices))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			resources, fake := newTestResources(t)

			contents, err := resources.Read(context.Background(), tt.uri)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if contents.URI != tt.uri || contents.MimeType != "application/json" {
				t.Errorf("Unexpected contents: %+v", contents)
			}
			if !strings.Contains(contents.Text, "\n  ") {
				t.Errorf("Expected indented JSON, got %q", contents.Text)
			}
			tt.check(t, contents.Text)

			if strings.Join(fake.requests, ",") != strings.Join(tt.requests, ",") {
				t.Errorf("Expected requests %v, got %v", tt.requests, fake.requests)
			}
		})
	}
}

func TestRegisterResources_ReadUnknown(t *testing.T) {
	resources, _ := newTestResources(t)

	_, err := resources.Read(context.Background(), "functions://list")
	if !errors.Is(err, server.ErrUnknownResource) {
		t.Errorf("Expected ErrUnknownResource, got %v", err)
	}
}

func TestRegisterPrompts(t *testing.T) {
	prompts := server.NewPrompts()
	RegisterPrompts(prompts)

	want := map[string]string{
		"create_database_prompt": "create_connection_pool",
		"analyze_costs_prompt":   "get_account_balance",
		"billing_history_prompt": "get_invoices",
	}
	if prompts.Len() != len(want) {
		t.Fatalf("Expected %d prompts, got %d", len(want), prompts.Len())
	}

	registry := newToolNames(t)
	for name, tool := range want {
		result, err := prompts.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
			t.Fatalf("%s: unexpected messages %+v", name, result.Messages)
		}
		text := result.Messages[0].Content.Text
		if !strings.Contains(text, tool) {
			t.Errorf("%s: expected a reference to %s", name, tool)
		}
		if _, ok := registry[tool]; !ok {
			t.Errorf("%s references unregistered tool %s", name, tool)
		}
	}
}

func newToolNames(t *testing.T) map[string]struct{} {
	t.Helper()
	d, _ := newTestDispatcher(t)
	names := make(map[string]struct{})
	for _, desc := range d.Registry().List() {
		names[desc.Name] = struct{}{}
	}
	return names
}
