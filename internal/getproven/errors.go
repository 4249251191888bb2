package getproven

import "fmt"

// ConfigurationError means the client cannot be constructed at all,
// typically because the API credential is absent. It is fatal at
// startup and distinct from any per-request failure.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("getproven: missing configuration: %s", e.Missing)
}

// UpstreamHTTPError is a non-2xx response from the catalog API. Detail
// carries the upstream error body when it was parseable JSON, otherwise
// a generic message built from the HTTP status text.
type UpstreamHTTPError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("getproven: upstream returned %d: %s", e.StatusCode, e.Detail)
}

// TransportError is a network-level failure with no HTTP status
// available.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("getproven: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
