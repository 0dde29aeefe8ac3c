package server

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownResource is returned by Read for URIs that were never registered
var ErrUnknownResource = errors.New("resource not found")

// Resource is a read-only document a server exposes next to its tools
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Read        func(ctx context.Context) (string, error)
}

// ResourceDescriptor is returned by resources/list
type ResourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContents is one entry of a resources/read result
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// Resources holds the resources of one server process, populated at startup
type Resources struct {
	items    map[string]Resource
	ordering []string
}

// NewResources creates an empty resource set
func NewResources() *Resources {
	return &Resources{items: make(map[string]Resource)}
}

// Register adds a resource
func (r *Resources) Register(res Resource) error {
	if res.URI == "" {
		return fmt.Errorf("resource uri cannot be empty")
	}
	if res.Read == nil {
		return fmt.Errorf("resource %s: reader cannot be nil", res.URI)
	}
	if _, exists := r.items[res.URI]; exists {
		return fmt.Errorf("resource %s already registered", res.URI)
	}
	if res.MimeType == "" {
		res.MimeType = "text/plain"
	}
	r.items[res.URI] = res
	r.ordering = append(r.ordering, res.URI)
	return nil
}

// MustRegister registers a resource or panics on error
func (r *Resources) MustRegister(res Resource) {
	if err := r.Register(res); err != nil {
		panic(err)
	}
}

// Len returns the number of resources; a nil set is empty
func (r *Resources) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordering)
}

// List returns resource descriptors in registration order
func (r *Resources) List() []ResourceDescriptor {
	descriptors := make([]ResourceDescriptor, 0, r.Len())
	if r == nil {
		return descriptors
	}
	for _, uri := range r.ordering {
		res := r.items[uri]
		descriptors = append(descriptors, ResourceDescriptor{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MimeType:    res.MimeType,
		})
	}
	return descriptors
}

// Read returns the current contents of uri
func (r *Resources) Read(ctx context.Context, uri string) (ResourceContents, error) {
	if r == nil {
		return ResourceContents{}, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	res, exists := r.items[uri]
	if !exists {
		return ResourceContents{}, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	text, err := res.Read(ctx)
	if err != nil {
		return ResourceContents{}, err
	}
	return ResourceContents{URI: uri, MimeType: res.MimeType, Text: text}, nil
}
