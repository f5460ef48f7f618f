package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, h http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		data, _ := io.ReadAll(f)
		json.NewEncoder(w).Encode(UploadResult{
			Success:      true,
			Filename:     "1-" + hdr.Filename,
			OriginalName: hdr.Filename,
			Path:         "/uploads/1-" + hdr.Filename,
			Size:         int64(len(data)),
		})
	}))

	res, err := c.Upload(context.Background(), "chair.glb", strings.NewReader("glTF"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Filename != "1-chair.glb" || res.OriginalName != "chair.glb" || res.Size != 4 {
		t.Errorf("Upload result = %+v", res)
	}
}

func TestStatusErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/move-to-display/"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"File not found"}`))
		case r.URL.Path == "/upload":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Only .glb, .gltf and .stl files are allowed"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		status  int
		message string
	}{
		{
			name:    "move missing file",
			call:    func() error { return c.MoveToDisplay(ctx, "a.glb") },
			status:  http.StatusNotFound,
			message: "File not found",
		},
		{
			name: "upload rejected",
			call: func() error {
				_, err := c.Upload(ctx, "notes.txt", strings.NewReader("x"))
				return err
			},
			status:  http.StatusBadRequest,
			message: "Only .glb, .gltf and .stl files are allowed",
		},
		{
			name: "list without body",
			call: func() error {
				_, err := c.List(ctx, CategoryUploaded)
				return err
			},
			status: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var se *StatusError
			if err := test.call(); !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if se.StatusCode != test.status || se.Message != test.message {
				t.Errorf("StatusError = %+v, expected %d %q", se, test.status, test.message)
			}
		})
	}
}

func TestList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads-list":
			w.Write([]byte(`{"files":["a.glb","b.stl"]}`))
		case "/display-list":
			w.Write([]byte(`{"files":null}`))
		}
	}))

	uploaded, err := c.List(context.Background(), CategoryUploaded)
	if err != nil || len(uploaded) != 2 || uploaded[1] != "b.stl" {
		t.Errorf("List(uploaded) = %v, %v", uploaded, err)
	}
	display, err := c.List(context.Background(), CategoryDisplay)
	if err != nil || display == nil || len(display) != 0 {
		t.Errorf("List(display) = %#v, %v, expected empty non-nil", display, err)
	}
	if _, err := c.List(context.Background(), "trash"); err == nil {
		t.Error("expected an error for an unknown category")
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	srv.Close()

	_, err = c.List(context.Background(), CategoryDisplay)
	if err == nil || !strings.Contains(err.Error(), "could not connect to server") {
		t.Errorf("expected a connection error, got %v", err)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("/registry"); err == nil {
		t.Error("expected an error for a URL without a scheme")
	}
}
