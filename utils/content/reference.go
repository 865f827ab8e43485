package content

import (
	"encoding/json"
	"strings"
)

// SchemaVersion is the current Reference layout. Rows written before the
// structured column existed have Version 0 and are read through the legacy
// content_url text instead.
const SchemaVersion = 1

// ResourceKind tags what a primary resource points at
type ResourceKind string

const (
	KindURL  ResourceKind = "url"
	KindFile ResourceKind = "file"
)

// Link is a named secondary resource
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Resource is the primary thing a module delivers. For KindFile, Key is the
// object-storage key and URL may be empty until resolved.
type Resource struct {
	Kind ResourceKind `json:"kind"`
	URL  string       `json:"url,omitempty"`
	Key  string       `json:"key,omitempty"`
	Name string       `json:"name,omitempty"`
}

// Reference is the structured module content: one optional primary resource
// and an ordered list of named secondary links.
type Reference struct {
	Version int       `json:"version"`
	Primary *Resource `json:"primary,omitempty"`
	Links   []Link    `json:"links"`
}

// Envelope is the legacy JSON shape packed into the content_url text column
type Envelope struct {
	URL   string `json:"url"`
	Links []Link `json:"links"`
}

// DecodeLegacy never fails. A JSON object is read as an envelope; anything
// else is treated as a single plain URL.
func DecodeLegacy(raw string) Envelope {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var env struct {
			URL   *string `json:"url"`
			Links []Link  `json:"links"`
		}
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
			out := Envelope{Links: env.Links}
			if env.URL != nil {
				out.URL = *env.URL
			}
			if out.Links == nil {
				out.Links = []Link{}
			}
			return out
		}
	}
	return Envelope{URL: raw, Links: []Link{}}
}

// EncodeLegacy writes the envelope form. A bare URL with no links is written
// as the plain string, matching rows created before envelopes existed.
func EncodeLegacy(env Envelope) string {
	if len(env.Links) == 0 {
		return env.URL
	}
	payload, err := json.Marshal(env)
	if err != nil {
		// Envelope only holds strings; Marshal cannot fail here.
		return env.URL
	}
	return string(payload)
}

// FromLegacy upgrades a content_url value into a Reference
func FromLegacy(raw string) Reference {
	env := DecodeLegacy(raw)
	ref := Reference{Version: SchemaVersion, Links: env.Links}
	if strings.TrimSpace(env.URL) != "" {
		ref.Primary = &Resource{Kind: KindURL, URL: env.URL}
	}
	return ref
}

// NewReference builds a Reference from a primary URL and secondary links.
// Links with an empty URL are dropped.
func NewReference(primaryURL string, links []Link) Reference {
	ref := Reference{Version: SchemaVersion, Links: []Link{}}
	if u := strings.TrimSpace(primaryURL); u != "" {
		ref.Primary = &Resource{Kind: KindURL, URL: u}
	}
	for _, l := range links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		ref.Links = append(ref.Links, Link{Name: strings.TrimSpace(l.Name), URL: strings.TrimSpace(l.URL)})
	}
	return ref
}

// IsSet reports whether the reference was written with a known schema
func (r Reference) IsSet() bool {
	return r.Version > 0
}

// PrimaryURL returns the primary URL, or "" for file resources and empty refs
func (r Reference) PrimaryURL() string {
	if r.Primary == nil {
		return ""
	}
	return r.Primary.URL
}

// Legacy renders the reference back into the content_url text form
func (r Reference) Legacy() string {
	return EncodeLegacy(Envelope{URL: r.PrimaryURL(), Links: r.Links})
}
