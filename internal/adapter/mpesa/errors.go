package mpesa

import "fmt"

// AuthError reports a failed credential exchange.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mpesa auth failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("mpesa auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// GatewayError reports a transport failure, timeout or unparseable gateway response.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mpesa %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("mpesa %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
