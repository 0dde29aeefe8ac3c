package server

import (
	"errors"
	"fmt"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
)

// ErrUnknownPrompt is returned by Get for names that were never registered
var ErrUnknownPrompt = errors.New("prompt not found")

// Prompt is a fixed user message template offered through prompts/get
type Prompt struct {
	Name        string
	Description string
	Text        string
}

// PromptDescriptor is returned by prompts/list
type PromptDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PromptMessage is one message of a prompts/get result
type PromptMessage struct {
	Role    string             `json:"role"`
	Content tools.ContentBlock `json:"content"`
}

// PromptResult is the prompts/get result
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// Prompts holds the prompt templates of one server process, populated at startup
type Prompts struct {
	items    map[string]Prompt
	ordering []string
}

// NewPrompts creates an empty prompt set
func NewPrompts() *Prompts {
	return &Prompts{items: make(map[string]Prompt)}
}

// Register adds a prompt
func (p *Prompts) Register(prompt Prompt) error {
	if prompt.Name == "" {
		return fmt.Errorf("prompt name cannot be empty")
	}
	if prompt.Text == "" {
		return fmt.Errorf("prompt %s: text cannot be empty", prompt.Name)
	}
	if _, exists := p.items[prompt.Name]; exists {
		return fmt.Errorf("prompt %s already registered", prompt.Name)
	}
	p.items[prompt.Name] = prompt
	p.ordering = append(p.ordering, prompt.Name)
	return nil
}

// MustRegister registers a prompt or panics on error
func (p *Prompts) MustRegister(prompt Prompt) {
	if err := p.Register(prompt); err != nil {
		panic(err)
	}
}

// Len returns the number of prompts; a nil set is empty
func (p *Prompts) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ordering)
}

// List returns prompt descriptors in registration order
func (p *Prompts) List() []PromptDescriptor {
	descriptors := make([]PromptDescriptor, 0, p.Len())
	if p == nil {
		return descriptors
	}
	for _, name := range p.ordering {
		prompt := p.items[name]
		descriptors = append(descriptors, PromptDescriptor{Name: prompt.Name, Description: prompt.Description})
	}
	return descriptors
}

// Get renders the prompt name as a single user message
func (p *Prompts) Get(name string) (PromptResult, error) {
	if p == nil {
		return PromptResult{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	prompt, exists := p.items[name]
	if !exists {
		return PromptResult{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	return PromptResult{
		Description: prompt.Description,
		Messages: []PromptMessage{
			{Role: "user", Content: tools.ContentBlock{Type: "text", Text: prompt.Text}},
		},
	}, nil
}
