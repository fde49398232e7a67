package rcl

import (
	"fmt"
	"strings"
)

// AlreadyDeclaredError is returned when declaring a parameter name that is
// already present in the store. Names lists every offending name.
type AlreadyDeclaredError struct {
	Names []string
}

func (e *AlreadyDeclaredError) Error() string {
	return fmt.Sprintf("parameters already declared: %s", strings.Join(e.Names, ", "))
}

// NotDeclaredError is returned when an operation references a parameter
// that was never declared and undeclared parameters are not allowed.
type NotDeclaredError struct {
	Names []string
}

func (e *NotDeclaredError) Error() string {
	return fmt.Sprintf("parameters not declared: %s", strings.Join(e.Names, ", "))
}

// ImmutableError is returned when undeclaring a read-only parameter.
type ImmutableError struct {
	Name string
}

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("parameter %s is read-only and cannot be undeclared", e.Name)
}

// InvalidNameError is returned when a name fails structural validation.
// Index is the byte offset of the offending character, or -1 when the
// problem is not tied to a single position.
type InvalidNameError struct {
	Name   string
	Reason string
	Index  int
}

func (e *InvalidNameError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid name %q: %s (at index %d)", e.Name, e.Reason, e.Index)
	}
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

// RejectedByCallbackError is returned from the declare path when the
// registered validation callback refuses a parameter. The bulk Set path
// folds the rejection into the returned results instead of raising it;
// the two paths deliberately differ.
type RejectedByCallbackError struct {
	Name   string
	Reason string
}

func (e *RejectedByCallbackError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("parameter %s rejected by callback", e.Name)
	}
	return fmt.Sprintf("parameter %s rejected by callback: %s", e.Name, e.Reason)
}
