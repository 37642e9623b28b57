package errors

import "fmt"

type annorouteError string

func (s annorouteError) Error() string {
	return string(s)
}

const (
	// ErrNotFound is an error that is returned when an entity was not found
	ErrNotFound annorouteError = "entity not found"
	// ErrInvalidPath is returned when a route path pattern cannot be represented
	ErrInvalidPath annorouteError = "invalid path pattern"
	// ErrInvalidVerb is returned when a rule declares an unknown HTTP verb
	ErrInvalidVerb annorouteError = "invalid http verb"
	// ErrDuplicateRoute is returned when a verb and path pair is registered twice
	ErrDuplicateRoute annorouteError = "duplicate route"
	// ErrDuplicateName is returned when a route name is registered twice
	ErrDuplicateName annorouteError = "duplicate route name"
	// ErrUnresolved is returned when a target or middleware has no registered implementation
	ErrUnresolved annorouteError = "unresolved reference"
)

// ConfigurationError is returned when a router rejects a registration. It is
// a startup failure: the route table must not be served partially built.
type ConfigurationError struct {
	Class  string
	Method string
	Op     string
	Err    error
}

func (e *ConfigurationError) Error() string {
	target := e.Class
	if len(e.Method) > 0 {
		target = target + "@" + e.Method
	}
	if len(target) == 0 {
		return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s: %v", target, e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DiscoveryError is returned when a scan root exists but cannot be enumerated
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error: %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
