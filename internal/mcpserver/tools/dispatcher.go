package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher resolves, validates and invokes tools, producing exactly one
// Result per request. Invocations run synchronously and are never retried.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
	observer *Observer
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for per-invocation records
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithObserver sets the telemetry observer
func WithObserver(observer *Observer) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}

// NewDispatcher seals registry and returns a dispatcher serving it
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	registry.Seal()
	d := &Dispatcher{
		registry: registry,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the sealed registry behind the dispatcher
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch executes one invocation
func (d *Dispatcher) Dispatch(ctx context.Context, req InvocationRequest) (result Result) {
	start := time.Now()
	ctx, finish := d.observer.start(ctx, req.Tool)

	defer func() {
		// Faults inside the dispatcher itself must still produce an envelope
		if rec := recover(); rec != nil {
			result = Fail(InternalError, fmt.Sprintf("dispatcher fault: %v", rec))
		}
		duration := time.Since(start)
		finish(result, duration)
		d.logResult(req.Tool, result, duration)
	}()

	def, err := d.registry.Resolve(req.Tool)
	if err != nil {
		return Fail(UnknownTool, fmt.Sprintf("Tool not found: %s", req.Tool))
	}

	args, err := Validate(def.Params, req.Arguments)
	if err != nil {
		return Normalize(nil, err)
	}

	payload, err := invoke(ctx, def, args)
	if err != nil {
		return Fail(BackendError, err.Error())
	}

	if _, err := json.Marshal(payload); err != nil {
		return Fail(InternalError, "Failed to serialize tool result: "+err.Error())
	}

	return Success(payload)
}

// invoke runs the handler, converting a panic into an error
func invoke(ctx context.Context, def *ToolDefinition, args Arguments) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			payload = nil
			err = fmt.Errorf("tool %s panicked: %v", def.Name, rec)
		}
	}()
	return def.Handler(ctx, args)
}

func (d *Dispatcher) logResult(tool string, result Result, duration time.Duration) {
	if result.OK {
		d.logger.Info().
			Str("tool", tool).
			Dur("duration", duration).
			Msg("tool call succeeded")
		return
	}

	event := d.logger.Warn()
	if result.Kind() == InternalError {
		event = d.logger.Error()
	}
	event.
		Str("tool", tool).
		Str("kind", string(result.Failure.Kind)).
		Str("reason", string(result.Failure.Reason)).
		Str("message", result.Failure.Message).
		Dur("duration", duration).
		Msg("tool call failed")
}
