package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/server/storage"
)

// DefaultOrigins are the front-end dev server origins allowed by CORS.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5175",
	"http://localhost:5176",
}

// server is the implementation of the Server interface.
type server struct {
	mux     *http.ServeMux
	handler http.Handler

	storage       storage.Storage
	origins       map[string]bool
	publicURL     string
	maxUploadSize int64
	logRequests   bool
}

// Server is the HTTP front of the file registry.
//
// Routes:
//   - POST /upload: multipart "file" into the "uploaded" set
//   - GET /uploads-list, GET /display-list: {"files": [...]}
//   - GET /uploads/{filename}, GET /display/{filename}: file bytes
//   - POST /move-to-display/{filename}: moves a file to the "display" set
//   - GET /: liveness text
//
// Every response carries CORS headers for the configured origins and OPTIONS preflights are
// answered with 204.
type Server interface {
	http.Handler

	// Handle mounts an extra handler behind the same middleware, e.g. the websocket hub.
	//
	// Parameters:
	//   - pattern: a ServeMux pattern such as "GET /ws"
	//   - h: the handler
	Handle(pattern string, h http.Handler)
}

var _ Server = &server{}

// NewServer creates a Server over a storage backend.
//
// Parameters:
//   - st: the storage backend
//   - options: a variadic list of ServerBuilderOption functions to configure the Server
//
// Returns:
//   - Server: the server, ready to be passed to http.Server
func NewServer(st storage.Storage, options ...ServerBuilderOption) Server {
	s := &server{
		mux:           http.NewServeMux(),
		storage:       st,
		origins:       map[string]bool{},
		maxUploadSize: 100 << 20,
		logRequests:   true,
	}
	for _, o := range DefaultOrigins {
		s.origins[o] = true
	}
	for _, opt := range options {
		opt(s)
	}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("GET /uploads-list", s.handleList(storage.CategoryUploaded))
	s.mux.HandleFunc("GET /display-list", s.handleList(storage.CategoryDisplay))
	s.mux.HandleFunc("GET /uploads/{filename}", s.handleFile(storage.CategoryUploaded))
	s.mux.HandleFunc("GET /display/{filename}", s.handleFile(storage.CategoryDisplay))
	s.mux.HandleFunc("POST /move-to-display/{filename}", s.handleMove)

	s.handler = s.cors(s.mux)
	if s.logRequests {
		s.handler = logging(s.handler)
	}
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
	log.Printf("[API] mounted %s", pattern)
}

// fileURL builds the absolute retrieval URL of a stored upload.
func (s *server) fileURL(r *http.Request, name string) string {
	base := s.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimSuffix(base, "/") + "/uploads/" + name
}
