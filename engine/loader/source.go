package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Source fetches the bytes behind a model URL.
// URLs may be absolute or relative to whatever base the Source is configured with.
type Source interface {
	// Fetch returns the complete contents addressed by rawURL.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - rawURL: the model or resource URL
	//
	// Returns:
	//   - []byte: the contents
	//   - error: error if the resource could not be fetched
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, rawURL string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// HTTPSource fetches model files from the upload service over HTTP.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

var _ Source = &HTTPSource{}

// NewHTTPSource creates a Source that resolves relative URLs such as "display/chair.glb"
// against baseURL.
//
// Parameters:
//   - baseURL: the upload service root, e.g. "http://localhost:3001/"
//   - client: the HTTP client to use; nil selects a client with a 30 second timeout
//
// Returns:
//   - *HTTPSource: the source
//   - error: error if baseURL cannot be parsed
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{base: u, client: client}, nil
}

func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	target := s.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// resolveRelative joins a resource URI found inside a model file with the model's own URL.
func resolveRelative(modelURL, uri string) string {
	if strings.Contains(uri, "://") || strings.HasPrefix(uri, "/") {
		return uri
	}
	dir := path.Dir(modelURL)
	if dir == "." {
		return uri
	}
	return dir + "/" + uri
}
