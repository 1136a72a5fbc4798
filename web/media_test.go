package web

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaURL(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	plain.Host = "dhaba.local:8000"

	proxied := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	proxied.Host = "dillidadhaba.in"
	proxied.Header.Set("X-Forwarded-Proto", "https")

	secure := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	secure.Host = "dillidadhaba.in"
	secure.TLS = &tls.ConnectionState{}

	tests := []struct {
		name  string
		media *media
		r     *http.Request
		ref   string
		want  string
	}{
		{"request host", newMedia("", "/media/", "media"), plain, "menu/dal.jpg", "http://dhaba.local:8000/media/menu/dal.jpg"},
		{"forwarded https", newMedia("", "/media/", "media"), proxied, "menu/dal.jpg", "https://dillidadhaba.in/media/menu/dal.jpg"},
		{"tls", newMedia("", "/media/", "media"), secure, "menu/dal.jpg", "https://dillidadhaba.in/media/menu/dal.jpg"},
		{"base url wins", newMedia("https://cdn.dhaba.in/", "/media/", ""), plain, "/menu/dal.jpg", "https://cdn.dhaba.in/media/menu/dal.jpg"},
		{"prefix without slash", newMedia("", "/uploads", ""), plain, "dal.jpg", "http://dhaba.local:8000/uploads/dal.jpg"},
		{"absolute media url", newMedia("", "https://bucket.example.com/m/", ""), plain, "dal.jpg", "https://bucket.example.com/m/dal.jpg"},
		{"absolute ref", newMedia("", "/media/", ""), plain, "https://img.example.com/x.png", "https://img.example.com/x.png"},
		{"escaped", newMedia("", "/media/", ""), plain, "menu/malai kofta.jpg", "http://dhaba.local:8000/media/menu/malai%20kofta.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.media.URL(tt.r, tt.ref)
			require.NotNil(t, got)
			require.Equal(t, tt.want, *got)
		})
	}

	require.Nil(t, newMedia("", "/media/", "").URL(plain, "  "))
}

func TestMediaHandler(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "menu"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "menu", "dal.jpg"), []byte("jpeg bytes"), 0o644))

	m := newMedia("", "/media/", root)
	require.True(t, m.servesLocally())
	require.False(t, newMedia("", "https://cdn.example.com/", root).servesLocally())
	require.False(t, newMedia("", "/media/", "").servesLocally())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/menu/dal.jpg", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "jpeg bytes", w.Body.String())

	w = httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/menu/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/menu/missing.jpg", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
