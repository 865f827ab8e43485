package extraction

import (
	"context"
	"fmt"

	"github.com/dabhanushali/enacton-training/services/inference"
	"github.com/gofiber/fiber/v2/log"
)

const (
	// maxPromptChars keeps very long documents inside the model context window
	maxPromptChars = 60000

	extractionTemperature = 0.1
	extractionMaxTokens   = 8192
)

const extractionSystemPrompt = `You design corporate training courses. Split the material you are given into an ordered list of learning modules.
For each module give a short module_name, a one or two sentence module_description, a content_type (one of text, video, link, pdf, mixed),
a content_url when the material names a specific video or link for it (otherwise an empty string), and estimated_duration_minutes.
Group closely related topics as sub_modules of a module. Use at most one level of sub_modules.`

var moduleSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"module_name":                map[string]interface{}{"type": "string"},
		"module_description":         map[string]interface{}{"type": "string"},
		"content_type":               map[string]interface{}{"type": "string", "enum": []string{"text", "video", "link", "pdf", "mixed"}},
		"content_url":                map[string]interface{}{"type": "string"},
		"estimated_duration_minutes": map[string]interface{}{"type": "integer"},
	},
	"required":             []string{"module_name", "module_description", "content_type", "content_url", "estimated_duration_minutes"},
	"additionalProperties": false,
}

func structureSchema() map[string]interface{} {
	parent := map[string]interface{}{}
	for k, v := range moduleSchema {
		parent[k] = v
	}
	props := map[string]interface{}{}
	for k, v := range moduleSchema["properties"].(map[string]interface{}) {
		props[k] = v
	}
	props["sub_modules"] = map[string]interface{}{"type": "array", "items": moduleSchema}
	parent["properties"] = props
	parent["required"] = append(append([]string{}, moduleSchema["required"].([]string)...), "sub_modules")

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"modules": map[string]interface{}{"type": "array", "items": parent},
		},
		"required":             []string{"modules"},
		"additionalProperties": false,
	}
}

// InferenceExtractor asks a chat completion model for the structure directly
type InferenceExtractor struct {
	client *inference.Client
}

// NewInferenceExtractor creates an extractor backed by client
func NewInferenceExtractor(client *inference.Client) *InferenceExtractor {
	return &InferenceExtractor{client: client}
}

// Extract prompts the model with a JSON schema and falls back to plain JSON
// mode for models that reject schemas
func (e *InferenceExtractor) Extract(ctx context.Context, req Request) (*Result, error) {
	content := req.Content
	if len(content) > maxPromptChars {
		log.Warnf("[EXTRACTION] content truncated from %d to %d chars", len(content), maxPromptChars)
		content = content[:maxPromptChars]
	}
	userPrompt := fmt.Sprintf("Source type: %s\n\nMaterial:\n%s", req.Source, content)

	opts := []inference.Option{
		inference.WithTemperature(extractionTemperature),
		inference.WithMaxTokens(extractionMaxTokens),
	}

	raw, err := e.client.StructuredCompletion(ctx, extractionSystemPrompt, userPrompt, "course_structure", "Proposed course modules", structureSchema(), opts...)
	if err != nil {
		log.Warnf("[EXTRACTION] structured completion failed, retrying in JSON mode: %v", err)
		raw, err = e.client.JSONCompletion(ctx, extractionSystemPrompt+"\nRespond as {\"modules\": [...]}.", userPrompt, opts...)
		if err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
	}

	modules, err := parseModules(raw)
	if err != nil {
		log.Warnf("[EXTRACTION] unreadable model reply: %v", err)
		return &Result{Success: false, Error: "model returned an unreadable structure"}, nil
	}
	if len(modules) == 0 {
		return &Result{Success: false, Error: "no modules could be identified in the content"}, nil
	}
	return &Result{Success: true, Modules: modules}, nil
}
