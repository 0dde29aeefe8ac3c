package server

import (
	"encoding/json"
	"testing"
)

func TestJSONRPCRequest_Parsing(t *testing.T) {
	tests := []struct {
		name             string
		input            string
		wantMethod       string
		wantNotification bool
	}{
		{
			name:       "request with numeric id",
			input:      `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`,
			wantMethod: "tools/list",
		},
		{
			name:       "request with string id",
			input:      `{"jsonrpc":"2.0","id":"abc123","method":"ping"}`,
			wantMethod: "ping",
		},
		{
			name:             "notification without id",
			input:            `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			wantMethod:       "notifications/initialized",
			wantNotification: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req JSONRPCRequest
			if err := json.Unmarshal([]byte(tt.input), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Expected method %s, got %s", tt.wantMethod, req.Method)
			}
			if req.IsNotification() != tt.wantNotification {
				t.Errorf("IsNotification() = %v, want %v", req.IsNotification(), tt.wantNotification)
			}
		})
	}
}

func TestJSONRPCRequest_NullIDIsNotNotification(t *testing.T) {
	req := JSONRPCRequest{ID: json.RawMessage(`null`)}
	if req.IsNotification() {
		t.Error("null is still a valid id in JSON-RPC 2.0")
	}
}

func TestErrorResponse_DefaultsToNullID(t *testing.T) {
	got, err := json.Marshal(errorResponse(nil, ParseError, "invalid JSON"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"invalid JSON"}}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestResultResponse(t *testing.T) {
	resp, err := resultResponse(json.RawMessage(`7`), map[string]string{"status": "ok"})
	if err != nil {
		t.Fatalf("resultResponse() error = %v", err)
	}

	got, _ := json.Marshal(resp)
	want := `{"jsonrpc":"2.0","id":7,"result":{"status":"ok"}}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	if _, err := resultResponse(json.RawMessage(`1`), make(chan int)); err == nil {
		t.Error("Expected error for unencodable result")
	}
}
