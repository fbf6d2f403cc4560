package transport

import "fmt"

const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeConfigError  = "CONFIG_ERROR"
)

// NetworkError means no usable response reached the client: dial failure,
// timeout, or a broken response body.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the server responded, but with a non-success
// envelope code, a non-2xx status, or a body that is not the envelope
// format. Code is the application code when the envelope carries one,
// the HTTP status otherwise.
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s (code %s)", e.Message, e.Code)
}

// ConfigError means the outgoing request could not be constructed.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("request config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
