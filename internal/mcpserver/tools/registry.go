package tools

import (
	"fmt"
)

// Registry holds the tool definitions of one server process.
// It is populated at startup and sealed before the first request is served;
// after Seal it is read-only and needs no locking.
type Registry struct {
	tools    map[string]*ToolDefinition
	ordering []string // Preserve registration order for consistent tools/list
	sealed   bool
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*ToolDefinition),
	}
}

// Register adds a tool definition to the registry
func (r *Registry) Register(def ToolDefinition) error {
	if r.sealed {
		return fmt.Errorf("register %s: %w", def.Name, ErrRegistrySealed)
	}
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s: handler cannot be nil", def.Name)
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s: %w", def.Name, ErrDuplicateTool)
	}
	if err := checkParams(def.Params); err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}

	stored := def
	stored.Params = cloneParams(def.Params)
	r.tools[def.Name] = &stored
	r.ordering = append(r.ordering, def.Name)

	return nil
}

// MustRegister registers a tool or panics on error (for init-time registration)
func (r *Registry) MustRegister(def ToolDefinition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only
func (r *Registry) Seal() {
	r.sealed = true
}

// Resolve returns the definition registered under name
func (r *Registry) Resolve(name string) (*ToolDefinition, error) {
	def, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return def, nil
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.ordering)
}

// List returns all registered tool descriptors (for tools/list response)
func (r *Registry) List() []ToolDescriptor {
	descriptors := make([]ToolDescriptor, 0, len(r.ordering))
	for _, name := range r.ordering {
		def := r.tools[name]
		description := def.Description
		if def.Result != "" {
			description += "\n\nReturns: " + def.Result
		}
		descriptors = append(descriptors, ToolDescriptor{
			Name:        def.Name,
			Description: description,
			InputSchema: InputSchema(def.Params),
		})
	}

	return descriptors
}

// checkParams rejects parameter declarations the validator could never satisfy
func checkParams(params []Param) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("parameter %s declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Kind {
		case KindString, KindNumber, KindInteger, KindBoolean, KindObject:
		case KindEnum:
			if len(p.Enum) == 0 {
				return fmt.Errorf("parameter %s: enum requires at least one value", p.Name)
			}
		case KindArray:
			if p.Items != nil && p.Items.Kind == KindArray {
				return fmt.Errorf("parameter %s: nested arrays are not supported", p.Name)
			}
		default:
			return fmt.Errorf("parameter %s: unsupported kind %q", p.Name, p.Kind)
		}

		if p.Default != nil {
			if p.Required {
				return fmt.Errorf("parameter %s: required parameters cannot declare a default", p.Name)
			}
			if _, verr := coerce(p, p.Name, p.Default); verr != nil {
				return fmt.Errorf("parameter %s: default: %w", p.Name, verr)
			}
		}
	}
	return nil
}

// cloneParams deep-copies params so callers cannot change a registered definition
func cloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = cloneParam(p)
	}
	return out
}

func cloneParam(p Param) Param {
	if p.Enum != nil {
		p.Enum = append([]string(nil), p.Enum...)
	}
	if p.Items != nil {
		items := cloneParam(*p.Items)
		p.Items = &items
	}
	p.Default = cloneValue(p.Default)
	return p
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
