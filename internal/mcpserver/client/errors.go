package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from an upstream REST API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, message)
}

// IsNotFound reports whether the upstream answered 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// parseAPIError builds an APIError from the common error body shapes:
// {"code": 21211, "message": "..."} (Twilio), {"id": "not_found", "message": "..."} (DigitalOcean)
// and {"name": "validation_error", "message": "..."} (Resend)
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	for _, key := range []string{"code", "id", "name"} {
		if code := scalarString(fields[key]); code != "" {
			apiErr.Code = code
			break
		}
	}

	for _, key := range []string{"message", "error", "detail"} {
		if message := scalarString(fields[key]); message != "" {
			apiErr.Message = message
			break
		}
		if nested, ok := fields[key].(map[string]any); ok {
			if message := scalarString(nested["message"]); message != "" {
				apiErr.Message = message
				break
			}
		}
	}

	return apiErr
}

func scalarString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	case bool:
		return fmt.Sprint(value)
	default:
		return ""
	}
}
