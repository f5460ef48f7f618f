package client

import "net/http"

// ClientBuilderOption is a functional option for configuring a Client during construction.
type ClientBuilderOption func(*client)

// WithHTTPClient is an option builder that replaces the default HTTP client (30 second timeout).
//
// Parameters:
//   - hc: the HTTP client to send requests with
//
// Returns:
//   - ClientBuilderOption: a function that sets the HTTP client on a client
func WithHTTPClient(hc *http.Client) ClientBuilderOption {
	return func(c *client) {
		if hc != nil {
			c.http = hc
		}
	}
}
