package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Categories of the file registry.
const (
	CategoryUploaded = "uploaded"
	CategoryDisplay  = "display"
)

// UploadResult is the registry's answer to a successful upload.
type UploadResult struct {
	Success      bool   `json:"success"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// StatusError is returned when the registry answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.StatusCode, e.Message)
}

// client is the implementation of the Client interface.
type client struct {
	base *url.URL
	http *http.Client
}

// Client talks to the upload service / file registry.
type Client interface {
	// Upload sends a file to the registry's "uploaded" set.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - name: the original filename
	//   - r: the file contents
	//
	// Returns:
	//   - *UploadResult: the stored name and retrieval location
	//   - error: a *StatusError for rejected uploads, a wrapped transport error otherwise
	Upload(ctx context.Context, name string, r io.Reader) (*UploadResult, error)

	// List returns the filenames of a registry category.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - category: CategoryUploaded or CategoryDisplay
	//
	// Returns:
	//   - []string: the filenames, never nil on success
	//   - error: error if the request failed
	List(ctx context.Context, category string) ([]string, error)

	// MoveToDisplay transfers a file from the "uploaded" set to the "display" set.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - filename: the stored filename
	//
	// Returns:
	//   - error: a *StatusError with status 404 when the file is not in the "uploaded" set
	MoveToDisplay(ctx context.Context, filename string) error

	// BaseURL returns the registry root every request is resolved against.
	BaseURL() string
}

var _ Client = &client{}

// NewClient creates a registry Client.
//
// Parameters:
//   - baseURL: the registry root, e.g. "http://localhost:3001"
//   - options: a variadic list of ClientBuilderOption functions to configure the Client
//
// Returns:
//   - Client: the client
//   - error: error if baseURL is not an absolute URL
func NewClient(baseURL string, options ...ClientBuilderOption) (Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid registry URL %q", baseURL)
	}
	if !u.IsAbs() {
		return nil, errors.Errorf("registry URL %q is not absolute", baseURL)
	}

	c := &client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *client) BaseURL() string {
	return c.base.String()
}

func (c *client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, errors.Wrap(err, "could not build upload form")
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, errors.Wrap(err, "could not read upload contents")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "could not build upload form")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) List(ctx context.Context, category string) ([]string, error) {
	var endpoint string
	switch category {
	case CategoryUploaded:
		endpoint = "uploads-list"
	case CategoryDisplay:
		endpoint = "display-list"
	default:
		return nil, errors.Errorf("unknown category %q", category)
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Files []string `json:"files"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	return resp.Files, nil
}

func (c *client) MoveToDisplay(ctx context.Context, filename string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "move-to-display/"+url.PathEscape(filename), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %q", endpoint)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "could not create request")
	}
	return req, nil
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not connect to server")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &StatusError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "could not decode %s response", req.URL.Path)
	}
	return nil
}
