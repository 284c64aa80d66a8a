package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation is matched by errors for hooks that did not return a chain.
	ErrProtocolViolation = errors.New("hook protocol violation")

	// ErrChainItemFailed is matched by errors raised from a chain item's condition or action.
	ErrChainItemFailed = errors.New("chain item failed")

	// ErrHookFailed is matched by errors returned by the hook call itself.
	ErrHookFailed = errors.New("hook failed")

	// ErrHookPanic is wrapped around values recovered from panicking hooks and items.
	ErrHookPanic = errors.New("hook panicked")

	// ErrSuperseded reports that a newer transition stopped the sequence.
	// It is not a failure and never reaches the error sink.
	ErrSuperseded = errors.New("sequence superseded by a newer transition")
)

// ProtocolViolationError is returned when a hook result is not an ordered chain of items.
type ProtocolViolationError struct {
	Node   string
	Hook   HookName
	Got    string
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	msg := fmt.Sprintf("hook %s on route %q must return a chain of items, got %s", e.Hook, e.Node, e.Got)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ProtocolViolationError) Unwrap() error { return ErrProtocolViolation }

// ItemPhase names the part of a chain item that failed.
type ItemPhase string

const (
	PhaseCondition ItemPhase = "condition"
	PhaseAction    ItemPhase = "action"
)

// ChainItemError wraps the failure of one chain item.
// It matches both ErrChainItemFailed and the underlying cause.
type ChainItemError struct {
	Node  string
	Hook  HookName
	Index int
	Item  string
	Phase ItemPhase
	Err   error
}

func (e *ChainItemError) Error() string {
	return fmt.Sprintf("route %q %s: item %s %s failed: %v", e.Node, e.Hook, e.Item, e.Phase, e.Err)
}

func (e *ChainItemError) Unwrap() []error { return []error{ErrChainItemFailed, e.Err} }

// HookError wraps an error returned (or panicked) by the hook call itself.
type HookError struct {
	Node string
	Hook HookName
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("route %q %s: %v", e.Node, e.Hook, e.Err)
}

func (e *HookError) Unwrap() []error { return []error{ErrHookFailed, e.Err} }

// PanicError converts a recovered value into an error matching ErrHookPanic.
func PanicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrHookPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrHookPanic, r)
}
