package web

import (
	"net/http"
	"net/url"
	"strings"
)

// media resolves stored image references to absolute URLs and serves the files.
type media struct {
	baseURL string // optional fixed origin, e.g. https://dillidadhaba.in
	prefix  string // MEDIA_URL, path ("/media/") or absolute URL
	root    string
}

func newMedia(baseURL, mediaURL, root string) *media {
	if mediaURL == "" {
		mediaURL = "/media/"
	}
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &media{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		prefix:  mediaURL,
		root:    root,
	}
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// URL returns the absolute URL of ref, or nil when the item has no image.
func (m *media) URL(r *http.Request, ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if isAbsoluteURL(ref) {
		return &ref
	}

	rel := (&url.URL{Path: strings.TrimPrefix(ref, "/")}).EscapedPath()
	if isAbsoluteURL(m.prefix) {
		u := m.prefix + rel
		return &u
	}
	u := m.origin(r) + m.prefix + rel
	return &u
}

func (m *media) origin(r *http.Request) string {
	if m.baseURL != "" {
		return m.baseURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// servesLocally reports whether MEDIA_URL is a path this server should answer.
func (m *media) servesLocally() bool {
	return strings.HasPrefix(m.prefix, "/") && m.root != ""
}

// Handler serves files under root. Directory listings are refused.
func (m *media) Handler() http.Handler {
	files := http.StripPrefix(m.prefix, http.FileServer(http.Dir(m.root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
