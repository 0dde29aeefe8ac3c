package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
	"github.com/rs/zerolog"
)

// ProtocolVersion is the MCP revision announced in initialize responses
const ProtocolVersion = "2025-03-26"

// Info identifies the server in initialize responses and telemetry
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server speaks MCP over JSON-RPC 2.0 on behalf of one dispatcher.
// Requests are handled one at a time regardless of transport.
type Server struct {
	mu         sync.Mutex
	info       Info
	dispatcher *tools.Dispatcher
	resources  *Resources
	prompts    *Prompts
	logger     zerolog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithResources exposes a resource set through resources/list and resources/read
func WithResources(resources *Resources) Option {
	return func(s *Server) {
		s.resources = resources
	}
}

// WithPrompts exposes prompt templates through prompts/list and prompts/get
func WithPrompts(prompts *Prompts) Option {
	return func(s *Server) {
		s.prompts = prompts
	}
}

// WithLogger sets the protocol-level logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server for dispatcher
func New(info Info, dispatcher *tools.Dispatcher, opts ...Option) *Server {
	s := &Server{
		info:       info,
		dispatcher: dispatcher,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info returns the server identity
func (s *Server) Info() Info {
	return s.info
}

// Handle processes one JSON-RPC message and returns the encoded response,
// or nil when the message is a notification.
func (s *Server) Handle(ctx context.Context, payload []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	var req JSONRPCRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return encode(errorResponse(nil, ParseError, "invalid JSON"))
	}

	if req.JSONRPC != jsonRPCVersion {
		return encode(errorResponse(req.ID, InvalidRequest, "invalid jsonrpc version"))
	}
	if req.Method == "" {
		return encode(errorResponse(req.ID, InvalidRequest, "missing method"))
	}

	logger := s.logger.With().Str("method", req.Method).Logger()
	if id := GetCorrelationID(ctx); id != "" {
		logger = logger.With().Str("correlation_id", id).Logger()
	}

	if req.IsNotification() {
		logger.Debug().Msg("Received notification")
		return nil
	}

	logger.Debug().RawJSON("id", req.ID).Msg("Handling request")

	result, rpcErr := s.route(ctx, &req)
	if rpcErr != nil {
		logger.Warn().Int("code", rpcErr.Code).Str("error", rpcErr.Message).Msg("Request failed")
		return encode(errorResponse(req.ID, rpcErr.Code, rpcErr.Message))
	}

	resp, err := resultResponse(req.ID, result)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode result")
		return encode(errorResponse(req.ID, InternalError, "failed to encode result"))
	}
	return encode(resp)
}

func (s *Server) route(ctx context.Context, req *JSONRPCRequest) (any, *JSONRPCError) {
	switch req.Method {
	case "initialize":
		return s.initializeResult(), nil

	case "ping":
		return map[string]any{}, nil

	case "tools/list":
		return map[string]any{"tools": s.dispatcher.Registry().List()}, nil

	case "tools/call":
		return s.callTool(ctx, req.Params)

	case "resources/list":
		return map[string]any{"resources": s.resources.List()}, nil

	case "resources/read":
		return s.readResource(ctx, req.Params)

	case "prompts/list":
		return map[string]any{"prompts": s.prompts.List()}, nil

	case "prompts/get":
		return s.getPrompt(req.Params)

	default:
		return nil, &JSONRPCError{Code: MethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) initializeResult() map[string]any {
	capabilities := map[string]any{
		"tools": map[string]any{"listChanged": false},
	}
	if s.resources.Len() > 0 {
		capabilities["resources"] = map[string]any{"listChanged": false}
	}
	if s.prompts.Len() > 0 {
		capabilities["prompts"] = map[string]any{"listChanged": false}
	}
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    capabilities,
		"serverInfo":      s.info,
	}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *JSONRPCError) {
	var callReq tools.CallRequest
	if len(params) == 0 {
		return nil, &JSONRPCError{Code: InvalidParams, Message: "missing tool call parameters"}
	}
	if err := json.Unmarshal(params, &callReq); err != nil {
		return nil, &JSONRPCError{Code: InvalidParams, Message: "invalid tool call parameters"}
	}

	var result tools.Result
	invocation, err := callReq.Invocation()
	if err != nil {
		result = tools.Fail(tools.InvalidArguments, "arguments must be a JSON object")
	} else {
		result = s.dispatcher.Dispatch(ctx, invocation)
	}

	callResult, err := result.CallResult()
	if err != nil {
		return nil, &JSONRPCError{Code: InternalError, Message: err.Error()}
	}
	return callResult, nil
}

func (s *Server) readResource(ctx context.Context, params json.RawMessage) (any, *JSONRPCError) {
	var readReq struct {
		URI string `json:"uri"`
	}
	if len(params) == 0 || json.Unmarshal(params, &readReq) != nil || readReq.URI == "" {
		return nil, &JSONRPCError{Code: InvalidParams, Message: "resource uri is required"}
	}

	contents, err := s.resources.Read(ctx, readReq.URI)
	if errors.Is(err, ErrUnknownResource) {
		return nil, &JSONRPCError{Code: InvalidParams, Message: err.Error()}
	}
	if err != nil {
		return nil, &JSONRPCError{Code: InternalError, Message: err.Error()}
	}
	return map[string]any{"contents": []ResourceContents{contents}}, nil
}

func (s *Server) getPrompt(params json.RawMessage) (any, *JSONRPCError) {
	var getReq struct {
		Name string `json:"name"`
	}
	if len(params) == 0 || json.Unmarshal(params, &getReq) != nil || getReq.Name == "" {
		return nil, &JSONRPCError{Code: InvalidParams, Message: "prompt name is required"}
	}

	result, err := s.prompts.Get(getReq.Name)
	if err != nil {
		return nil, &JSONRPCError{Code: InvalidParams, Message: err.Error()}
	}
	return result, nil
}

func encode(resp JSONRPCResponse) []byte {
	data, _ := json.Marshal(resp)
	return data
}
