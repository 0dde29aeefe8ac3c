package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the uniform envelope produced for every invocation
type Result struct {
	OK      bool     `json:"ok"`
	Payload any      `json:"result,omitempty"`
	Failure *Failure `json:"error,omitempty"`
}

// MarshalJSON emits {"ok":true,"result":...} or {"ok":false,"error":...};
// a success always carries the result key, null when the handler returned nothing
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(struct {
			OK      bool `json:"ok"`
			Payload any  `json:"result"`
		}{OK: true, Payload: r.Payload})
	}
	return json.Marshal(struct {
		OK      bool     `json:"ok"`
		Failure *Failure `json:"error"`
	}{OK: false, Failure: r.Failure})
}

// Success wraps a handler's return value
func Success(payload any) Result {
	return Result{OK: true, Payload: payload}
}

// Fail builds a failure envelope
func Fail(kind FailureKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}

// Normalize converts a handler outcome into an envelope.
//
// A nil error yields Success. *Failure values keep their kind, *ValidationError
// becomes InvalidArguments, and every other error is a BackendError carrying
// only the error text.
func Normalize(payload any, err error) Result {
	if err == nil {
		return Success(payload)
	}

	var failure *Failure
	if errors.As(err, &failure) {
		copied := *failure
		return Result{Failure: &copied}
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return Result{Failure: &Failure{
			Kind:    InvalidArguments,
			Reason:  verr.Reason,
			Message: verr.Error(),
			Data:    validationData(verr),
		}}
	}

	if errors.Is(err, ErrUnknownTool) {
		return Fail(UnknownTool, err.Error())
	}

	return Fail(BackendError, err.Error())
}

func validationData(verr *ValidationError) map[string]any {
	data := map[string]any{"param": verr.Param}
	if verr.Expected != "" {
		data["expected"] = verr.Expected
	}
	if verr.Actual != "" {
		data["actual"] = verr.Actual
	}
	return data
}

// Err returns the failure as an error, or nil on success
func (r Result) Err() error {
	if r.OK || r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Kind returns the failure kind, or "" on success
func (r Result) Kind() FailureKind {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Kind
}

// CallResult renders the envelope in MCP tools/call format.
// MCP tool results carry {"content": [{"type": "text", "text": "..."}]};
// tool failures are reported in-band with isError set.
func (r Result) CallResult() (CallResult, error) {
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return CallResult{}, fmt.Errorf("failed to serialize tool result: %w", err)
	}

	return CallResult{
		Content: []ContentBlock{
			{
				Type: "text",
				Text: string(resultJSON),
			},
		},
		StructuredContent: json.RawMessage(resultJSON),
		IsError:           !r.OK,
	}, nil
}
