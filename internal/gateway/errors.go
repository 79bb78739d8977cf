package gateway

import "fmt"

// GatewayError is returned for any non-2xx response from the backend.
// Message holds the backend's error text when it supplied one, otherwise a
// generic description of the failed call.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// Detail includes the operation and HTTP status, for logs
func (e *GatewayError) Detail() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
}
