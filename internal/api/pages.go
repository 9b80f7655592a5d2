package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// PagesHandler serves the built frontend: static assets when the path
// maps to a file, the app shell otherwise so client-side routing works.
type PagesHandler struct {
	staticDir string
	files     http.Handler
}

func NewPagesHandler(staticDir string) *PagesHandler {
	return &PagesHandler{
		staticDir: staticDir,
		files:     http.FileServer(http.Dir(staticDir)),
	}
}

func (h *PagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticDir, filepath.Clean(strings.TrimPrefix(r.URL.Path, "/")))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		h.files.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
