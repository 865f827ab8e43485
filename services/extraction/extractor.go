// Package extraction turns pasted text, a web page or a PDF into a proposed
// course structure, keeps it as an editable preview and saves it as modules.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services/inference"
)

var (
	ErrDisabled          = errors.New("content extraction is not configured")
	ErrRejected          = errors.New("extraction service reported a failure")
	ErrEmptyContent      = errors.New("no content to extract from")
	ErrUnsupportedSource = errors.New("unsupported extraction source")
	ErrPreviewNotFound   = errors.New("extraction preview not found or expired")
	ErrNothingToSave     = errors.New("extraction preview has no modules")
)

// Source says how Request.Content should be read
type Source string

const (
	SourceText Source = "text"
	SourceURL  Source = "url"
	SourcePDF  Source = "pdf"
)

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	switch s {
	case SourceText, SourceURL, SourcePDF:
		return true
	}
	return false
}

// Request is the body sent to the extraction collaborator
type Request struct {
	Content string `json:"content"`
	Source  Source `json:"source"`
}

// ExtractedModule is one proposed module, optionally with one level of sub-modules
type ExtractedModule struct {
	ModuleName               string            `json:"module_name"`
	ModuleDescription        string            `json:"module_description"`
	ContentType              string            `json:"content_type"`
	ContentURL               string            `json:"content_url"`
	EstimatedDurationMinutes int               `json:"estimated_duration_minutes"`
	SubModules               []ExtractedModule `json:"sub_modules,omitempty"`
}

// Result is the collaborator's answer
type Result struct {
	Success bool              `json:"success"`
	Modules []ExtractedModule `json:"modules"`
	Error   string            `json:"error,omitempty"`
}

// Err converts an unsuccessful result into ErrRejected with the collaborator's message
func (r *Result) Err() error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrRejected)
	}
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Error)
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("%w: %s", ErrRejected, msg)
}

// Extractor proposes a module structure for content
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

// SourceResolver is implemented by extractors that read some sources
// themselves. For those sources the request carries the caller's raw
// content; everything else is loaded locally and sent as SourceText.
type SourceResolver interface {
	Resolves(source Source) bool
}

// Config selects and configures an extractor
type Config struct {
	FunctionURL     string
	FunctionKey     string
	InferenceAPIKey string
	InferenceURL    string
	InferenceModel  string
	Timeout         time.Duration
}

// NewExtractor prefers the remote function, then direct inference. It
// returns nil when neither is configured.
func NewExtractor(cfg Config) Extractor {
	switch {
	case cfg.FunctionURL != "":
		return NewFunctionClient(cfg.FunctionURL, cfg.FunctionKey, cfg.Timeout)
	case cfg.InferenceAPIKey != "":
		return NewInferenceExtractor(inference.NewClient(inference.Config{
			APIKey:  cfg.InferenceAPIKey,
			BaseURL: cfg.InferenceURL,
			Model:   cfg.InferenceModel,
			Timeout: cfg.Timeout,
		}))
	default:
		return nil
	}
}

// Normalize trims names, drops unnamed modules, maps unknown content types
// to text and flattens anything nested deeper than one sub-module level.
func Normalize(mods []ExtractedModule) []ExtractedModule {
	return normalize(mods, 0)
}

func normalize(mods []ExtractedModule, depth int) []ExtractedModule {
	out := make([]ExtractedModule, 0, len(mods))
	for _, m := range mods {
		m.ModuleName = strings.TrimSpace(m.ModuleName)
		if m.ModuleName == "" {
			continue
		}
		m.ModuleDescription = strings.TrimSpace(m.ModuleDescription)
		m.ContentURL = strings.TrimSpace(m.ContentURL)
		if !model.ContentType(m.ContentType).Valid() {
			m.ContentType = string(model.ContentTypeText)
		}
		if m.EstimatedDurationMinutes < 0 {
			m.EstimatedDurationMinutes = 0
		}
		if depth == 0 {
			m.SubModules = normalize(flatten(m.SubModules), 1)
		} else {
			m.SubModules = nil
		}
		out = append(out, m)
	}
	return out
}

// flatten lifts grandchildren up to sit after their parent
func flatten(mods []ExtractedModule) []ExtractedModule {
	var out []ExtractedModule
	for _, m := range mods {
		children := m.SubModules
		m.SubModules = nil
		out = append(out, m)
		out = append(out, flatten(children)...)
	}
	return out
}

// Count returns the number of top-level and sub-modules
func Count(mods []ExtractedModule) (parents, children int) {
	for _, m := range mods {
		parents++
		children += len(m.SubModules)
	}
	return parents, children
}
