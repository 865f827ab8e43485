package content

import (
	"net/url"
	"strings"
)

// ViewKind says how a client should render a resource
type ViewKind string

const (
	ViewEmbed ViewKind = "embed"
	ViewLink  ViewKind = "link"
)

// ResourceView is one renderable resource
type ResourceView struct {
	Kind     ViewKind `json:"kind"`
	Label    string   `json:"label,omitempty"`
	URL      string   `json:"url"`
	EmbedURL string   `json:"embed_url,omitempty"`
}

// View is the render-ready form of a module's content
type View struct {
	Primary   *ResourceView  `json:"primary,omitempty"`
	Resources []ResourceView `json:"resources"`
}

// BuildView resolves a Reference for display. resolve, when non-nil, turns a
// file resource's storage key into a fetchable URL.
func BuildView(ref Reference, resolve func(key string) (string, error)) (View, error) {
	view := View{Resources: []ResourceView{}}

	if ref.Primary != nil {
		target := ref.Primary.URL
		if ref.Primary.Kind == KindFile && ref.Primary.Key != "" && resolve != nil {
			resolved, err := resolve(ref.Primary.Key)
			if err != nil {
				return View{}, err
			}
			target = resolved
		}
		if target != "" {
			primary := viewFor(target)
			primary.Label = ref.Primary.Name
			view.Primary = &primary
		}
	}

	for _, l := range ref.Links {
		label := l.Name
		if label == "" {
			label = l.URL
		}
		view.Resources = append(view.Resources, ResourceView{
			Kind:  ViewLink,
			Label: label,
			URL:   l.URL,
		})
	}

	return view, nil
}

func viewFor(raw string) ResourceView {
	if id := YouTubeID(raw); id != "" {
		return ResourceView{
			Kind:     ViewEmbed,
			URL:      raw,
			EmbedURL: "https://www.youtube.com/embed/" + id,
		}
	}
	return ResourceView{Kind: ViewLink, URL: raw}
}

// YouTubeID extracts the video id from youtube.com/watch?v=<id> and
// youtu.be/<id> URLs. It returns "" for anything else.
func YouTubeID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com":
		if u.Path != "/watch" {
			return ""
		}
		return u.Query().Get("v")
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if i := strings.Index(id, "/"); i >= 0 {
			id = id[:i]
		}
		return id
	}
	return ""
}
