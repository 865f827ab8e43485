package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errNoJSON = errors.New("model reply contains no JSON")

// moduleEnvelope is the reply shape requested from the model
type moduleEnvelope struct {
	Modules []ExtractedModule `json:"modules"`
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// parseModules reads the module list out of a model reply. The JSON may sit
// in a markdown fence or between prose; a bare array of modules is accepted
// for models that drop the envelope.
func parseModules(reply string) ([]ExtractedModule, error) {
	body := strings.TrimSpace(reply)
	if m := fencedBlock.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}

	start := strings.IndexAny(body, "{[")
	if start == -1 {
		return nil, errNoJSON
	}
	end := closingIndex(body, start)
	if end == -1 {
		return nil, fmt.Errorf("%w: unterminated %c", errNoJSON, body[start])
	}
	doc := []byte(body[start : end+1])

	if doc[0] == '[' {
		var mods []ExtractedModule
		if err := json.Unmarshal(doc, &mods); err != nil {
			return nil, fmt.Errorf("failed to decode module list: %w", err)
		}
		return mods, nil
	}

	var env moduleEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("failed to decode module envelope: %w", err)
	}
	return env.Modules, nil
}

// closingIndex returns the index of the bracket matching the one at start,
// ignoring brackets inside JSON strings, or -1
func closingIndex(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
