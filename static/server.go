package static

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
)

//go:embed dist
var dist embed.FS

// Handler serves the embedded single-page frontend. Assets are served by
// extension; every other path gets index.html so client-side routes work
// without directory redirects.
func Handler() http.Handler {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		return http.NotFoundHandler()
	}
	fileServer := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAsset(r.URL.Path) {
			fileServer.ServeHTTP(w, r)
			return
		}
		b, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			http.Error(w, "index not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	})
}

func isAsset(p string) bool {
	if strings.HasPrefix(p, "/test-images/") {
		return true
	}
	switch path.Ext(p) {
	case ".js", ".css", ".svg", ".ico", ".png", ".jpg", ".txt", ".map":
		return true
	}
	return false
}

// TestImages lists the bundled test subject images for the gallery page.
func TestImages() ([]string, error) {
	entries, err := dist.ReadDir("dist/test-images")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".png", ".jpg", ".jpeg", ".webp", ".svg":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
