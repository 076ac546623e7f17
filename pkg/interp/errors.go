package interp

import (
	"errors"
	"fmt"

	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/signature"
)

var (
	// ErrSignatureNotFound indicates no signature file defines the requested symbol.
	ErrSignatureNotFound = errors.New("signature not found")

	// ErrSignatureParse indicates a persisted signature document is malformed.
	ErrSignatureParse = errors.New("failed to parse signature")

	// ErrCommandNotFound indicates no command is registered under the name.
	ErrCommandNotFound = errors.New("command not found")

	// ErrCommandLoadFailed indicates a registered command factory failed.
	ErrCommandLoadFailed = errors.New("command failed to load")

	// ErrInvalidArguments indicates a command rejected its argument list.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrCommandExecutionFailed wraps every failure of a dispatched command.
	ErrCommandExecutionFailed = errors.New("command execution failed")

	// ErrRecursionLimit indicates signatures reference each other too deeply (or in a cycle).
	ErrRecursionLimit = errors.New("signature nesting limit reached")
)

// CommandError is returned by Dispatch when a command fails to parse its
// arguments or to run. It matches both ErrCommandExecutionFailed and the
// underlying cause with errors.Is.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCommandExecutionFailed, e.Command, e.Err)
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandExecutionFailed, e.Err}
}

// AmbiguousSymbolError is the warning emitted for a symbol whose merged
// result set does not hold exactly one address.
type AmbiguousSymbolError struct {
	Symbol    string
	Addresses Addresses
}

func (e *AmbiguousSymbolError) Error() string {
	if len(e.Addresses) == 0 {
		return fmt.Sprintf("symbol %s had no results", e.Symbol)
	}
	return fmt.Sprintf("symbol %s had too many results: %s", e.Symbol, e.Addresses)
}

// UnmatchedSymbolError is the warning emitted for a symbol whose signatures
// all evaluated to an empty set.
type UnmatchedSymbolError struct {
	Symbol string
}

func (e *UnmatchedSymbolError) Error() string {
	return fmt.Sprintf("symbol %s was not matched by any signature", e.Symbol)
}

// SymbolError is the warning emitted when a symbol could not be computed.
type SymbolError struct {
	Symbol string
	Source string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %s (%s): %v", e.Symbol, e.Source, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

// isFatal returns true for errors that must never be recovered by the
// executor: corrupt persisted data, a bad target version and runaway
// recursion.
func isFatal(err error) bool {
	return errors.Is(err, ErrSignatureParse) ||
		errors.Is(err, ErrRecursionLimit) ||
		errors.Is(err, alias.ErrParse) ||
		errors.Is(err, signature.ErrTargetVersion)
}
