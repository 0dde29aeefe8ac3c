package tools

import (
	"context"
	"encoding/json"
)

// Kind is the declared shape of a tool parameter
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Param declares one named argument of a tool
type Param struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	// Default is applied when an optional parameter is absent. Nil means no default.
	Default any
	// Enum lists the accepted values for KindEnum
	Enum []string
	// Items is the element kind for KindArray (nil accepts any element)
	Items *Param
}

// Handler performs the backend call for a tool with already-validated arguments
type Handler func(ctx context.Context, args Arguments) (any, error)

// ToolDefinition describes a tool with its parameter schema and handler
type ToolDefinition struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
	// Result describes the success payload for humans and tools/list consumers
	Result string
}

// ToolDescriptor is returned by tools/list
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// InvocationRequest is one call to a tool with untyped arguments
type InvocationRequest struct {
	Tool      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallRequest represents the params of a tools/call JSON-RPC request
type CallRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Invocation decodes the raw arguments into an InvocationRequest.
// Absent or null arguments decode to an empty map.
func (c CallRequest) Invocation() (InvocationRequest, error) {
	req := InvocationRequest{Tool: c.Name, Arguments: map[string]any{}}
	if len(c.Arguments) == 0 || string(c.Arguments) == "null" {
		return req, nil
	}
	if err := json.Unmarshal(c.Arguments, &req.Arguments); err != nil {
		return InvocationRequest{}, err
	}
	if req.Arguments == nil {
		req.Arguments = map[string]any{}
	}
	return req, nil
}

// CallResult wraps tool execution results in MCP content format
type CallResult struct {
	Content           []ContentBlock `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError,omitempty"`
}

// ContentBlock represents a piece of tool output
type ContentBlock struct {
	Type string `json:"type"` // "text", "resource", etc.
	Text string `json:"text,omitempty"`
}
