package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/client"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
	"github.com/Carmen-Shannon/oxy-viewer/server/storage"
)

type testEnv struct {
	srv     *httptest.Server
	uploads string
	display string
}

func newTestEnv(t *testing.T, options ...ServerBuilderOption) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		uploads: filepath.Join(root, "uploads"),
		display: filepath.Join(root, "display"),
	}
	st, err := storage.NewLocalStorage(env.uploads, env.display)
	if err != nil {
		t.Fatal(err)
	}
	opts := append([]ServerBuilderOption{WithRequestLogging(false)}, options...)
	env.srv = httptest.NewServer(NewServer(st, opts...))
	t.Cleanup(env.srv.Close)
	return env
}

func uploadRequest(t *testing.T, url, field, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(part, content)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/upload", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "Hello from backend" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, WithPublicURL("https://models.example.com/"))

	resp, err := http.DefaultClient.Do(uploadRequest(t, env.srv.URL, "file", "my chair.glb", "glTF"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got client.UploadResult
	decode(t, resp, &got)

	want := client.UploadResult{
		Success:      true,
		Filename:     "my_chair.glb",
		OriginalName: "my chair.glb",
		Path:         filepath.Join(env.uploads, "my_chair.glb"),
		Size:         4,
		URL:          "https://models.example.com/uploads/my_chair.glb",
	}
	if got != want {
		t.Errorf("upload = %+v, want %+v", got, want)
	}
}

func TestUploadErrors(t *testing.T) {
	env := newTestEnv(t, WithMaxUploadSize(512))

	tests := []struct {
		name    string
		field   string
		file    string
		content string
		status  int
	}{
		{"no file", "other", "a.glb", "x", http.StatusBadRequest},
		{"disallowed extension", "file", "notes.txt", "x", http.StatusBadRequest},
		{"too large", "file", "big.glb", strings.Repeat("x", 4096), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(uploadRequest(t, env.srv.URL, tt.field, tt.file, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			var body errorResponse
			decode(t, resp, &body)
			if resp.StatusCode != tt.status || body.Error == "" {
				t.Errorf("status = %d, error = %q", resp.StatusCode, body.Error)
			}
		})
	}
}

func TestListsAndFiles(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.display, "fox.glb"), []byte("fox"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(env.srv.URL + "/uploads-list")
	if err != nil {
		t.Fatal(err)
	}
	var uploads listResponse
	decode(t, resp, &uploads)
	if uploads.Files == nil || len(uploads.Files) != 0 {
		t.Errorf("uploads = %#v", uploads.Files)
	}

	resp, err = http.Get(env.srv.URL + "/display-list")
	if err != nil {
		t.Fatal(err)
	}
	var display listResponse
	decode(t, resp, &display)
	if len(display.Files) != 1 || display.Files[0] != "fox.glb" {
		t.Errorf("display = %v", display.Files)
	}

	resp, err = http.Get(env.srv.URL + "/display/fox.glb")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "fox" {
		t.Errorf("GET /display/fox.glb = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(env.srv.URL + "/uploads/fox.glb")
	if err != nil {
		t.Fatal(err)
	}
	var missing errorResponse
	decode(t, resp, &missing)
	if resp.StatusCode != http.StatusNotFound || missing.Error == "" {
		t.Errorf("GET /uploads/fox.glb = %d %q", resp.StatusCode, missing.Error)
	}
}

func TestMoveToDisplay(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.uploads, "a.glb"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(env.srv.URL+"/move-to-display/a.glb", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var moved moveResponse
	decode(t, resp, &moved)
	if resp.StatusCode != http.StatusOK || !moved.Success || moved.Filename != "a.glb" {
		t.Errorf("move = %d %+v", resp.StatusCode, moved)
	}

	resp, err = http.Post(env.srv.URL+"/move-to-display/a.glb", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second move status = %d, want 404", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"preflight from dev server", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
		{"get from dev server", http.MethodGet, "http://localhost:5176", http.StatusOK, "http://localhost:5176"},
		{"foreign origin", http.MethodGet, "http://evil.example", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, env.srv.URL+"/uploads-list", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestHandleMountsBehindMiddleware(t *testing.T) {
	root := t.TempDir()
	st, err := storage.NewLocalStorage(filepath.Join(root, "u"), filepath.Join(root, "d"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(st, WithRequestLogging(false), WithOrigins("http://viewer.local"))
	s.Handle("GET /ws", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://viewer.local")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot || rec.Header().Get("Access-Control-Allow-Origin") != "http://viewer.local" {
		t.Errorf("mounted handler = %d, headers %v", rec.Code, rec.Header())
	}
}

// TestClientAgainstServer runs the registry client and the store against a real server.
func TestClientAgainstServer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := client.NewClient(env.srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewStore(store.WithRegistry(c))
	defer st.Close()

	res, err := st.UploadFile(ctx, "chair.glb", []byte("glTF"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if res.Filename != "chair.glb" || !strings.HasSuffix(res.URL, "/uploads/chair.glb") {
		t.Errorf("upload result = %+v", res)
	}
	if got := st.State().UploadsList; len(got) != 1 || got[0] != "chair.glb" {
		t.Errorf("uploads list = %v", got)
	}

	if err := st.MoveToDisplay(ctx, "chair.glb"); err != nil {
		t.Fatalf("MoveToDisplay: %v", err)
	}
	state := st.State()
	if len(state.UploadsList) != 0 || len(state.DisplayList) != 1 {
		t.Errorf("lists after move = %v / %v", state.UploadsList, state.DisplayList)
	}

	err = st.MoveToDisplay(ctx, "chair.glb")
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("second move err = %v, want a 404 StatusError", err)
	}

	if _, err := st.UploadFile(ctx, "notes.txt", []byte("x")); !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("bad upload err = %v, want a 400 StatusError", err)
	}
}
