package web

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// contentTypes maps a lowercased file extension to its media type.
// Anything else goes out as an opaque byte stream.
var contentTypes = map[string]string{
	".htm":  "text/html",
	".html": "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "text/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".ico":  "image/vnd.microsoft.icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".svg":  "image/svg+xml",
	".svgz": "image/svg+xml",
	".mp3":  "audio/mpeg",
}

// FileServer serves the frontend from a directory tree. Requests are
// confined to the root: anything that escapes it after normalization is a
// client error, not a lookup miss.
type FileServer struct {
	root string
}

func NewFileServer(root string) *FileServer {
	return &FileServer{root: filepath.Clean(root)}
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The router already percent-decoded the path; '+' still stands for a
	// space in paths produced by form-encoding clients.
	rel := strings.ReplaceAll(r.URL.Path, "+", " ")
	rel = path.Clean(strings.TrimPrefix(rel, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "Bad request")
		return
	}
	if rel == "." || rel == "" {
		rel = "index.html"
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if info, err := os.Stat(full); err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
	}

	f, err := os.Open(full)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "File not found")
		return
	}
	defer f.Close()

	ct, ok := contentTypes[strings.ToLower(filepath.Ext(full))]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, f)
}
