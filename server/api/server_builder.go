package api

// ServerBuilderOption is a functional option for configuring a Server during construction.
type ServerBuilderOption func(*server)

// WithOrigins is an option builder that replaces the CORS origin allow-list.
//
// Parameters:
//   - origins: allowed origins, e.g. "http://localhost:5173"
//
// Returns:
//   - ServerBuilderOption: a function that sets the allowed origins on a server
func WithOrigins(origins ...string) ServerBuilderOption {
	return func(s *server) {
		s.origins = make(map[string]bool, len(origins))
		for _, o := range origins {
			s.origins[o] = true
		}
	}
}

// WithPublicURL is an option builder that sets the base of the "url" field in upload
// responses. Without it the request's host is used.
//
// Parameters:
//   - base: the public root of the service, e.g. "https://models.example.com"
//
// Returns:
//   - ServerBuilderOption: a function that sets the public URL on a server
func WithPublicURL(base string) ServerBuilderOption {
	return func(s *server) {
		s.publicURL = base
	}
}

// WithMaxUploadSize is an option builder that limits the request body of an upload.
//
// Parameters:
//   - n: the limit in bytes, 100 MiB by default
//
// Returns:
//   - ServerBuilderOption: a function that sets the upload limit on a server
func WithMaxUploadSize(n int64) ServerBuilderOption {
	return func(s *server) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}

// WithRequestLogging is an option builder that toggles the request log.
//
// Parameters:
//   - enabled: whether each request is logged
//
// Returns:
//   - ServerBuilderOption: a function that sets request logging on a server
func WithRequestLogging(enabled bool) ServerBuilderOption {
	return func(s *server) {
		s.logRequests = enabled
	}
}
