package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Carmen-Shannon/oxy-viewer/client"
	"github.com/Carmen-Shannon/oxy-viewer/server/storage"
)

type listResponse struct {
	Files []string `json:"files"`
}

type moveResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// writeError maps storage errors onto 400, 404 and 500 responses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case storage.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("[API] %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Hello from backend")
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, storage.ErrTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	obj, err := s.storage.Save(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[API] saved %q as %s (%d bytes)", header.Filename, obj.Name, obj.Size)

	writeJSON(w, http.StatusOK, client.UploadResult{
		Success:      true,
		Filename:     obj.Name,
		OriginalName: header.Filename,
		Path:         obj.Path,
		Size:         obj.Size,
		URL:          s.fileURL(r, obj.Name),
	})
}

func (s *server) handleList(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := s.storage.List(r.Context(), category)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Files: files})
	}
}

func (s *server) handleFile(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, obj, err := s.storage.Open(r.Context(), category, r.PathValue("filename"))
		if err != nil {
			writeError(w, err)
			return
		}
		defer f.Close()
		http.ServeContent(w, r, obj.Name, obj.ModTime, f)
	}
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if err := s.storage.Move(r.Context(), filename); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[API] moved %s to %s", filename, storage.CategoryDisplay)
	writeJSON(w, http.StatusOK, moveResponse{Success: true, Filename: filename})
}
