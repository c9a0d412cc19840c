package ultra

import (
	"errors"
	"fmt"
)

// ErrTransport classifies every failure to reach the service or to understand
// its envelope. The core never retries these.
var ErrTransport = errors.New("ultra transport error")

// TransportError is returned when a remote call fails at the transport level:
// network failure, non-2xx reply, SOAP fault or an undecodable envelope.
type TransportError struct {
	Operation  string
	StatusCode int
	Fault      *Fault
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Fault != nil:
		return fmt.Sprintf("ultra %s: soap fault %s: %s", e.Operation, e.Fault.Code, e.Fault.String)
	case e.Err != nil:
		return fmt.Sprintf("ultra %s: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("ultra %s: unexpected HTTP status %d", e.Operation, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrTransport for every TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
