// Package fault classifies the fatal error conditions an armory run can hit.
// Every kind aborts the whole run; the command layer maps any of them to exit
// code 1. Conditions that are merely worth mentioning (a package already
// installed, a tool without an entry script) are logged, not raised.
package fault

import (
	"errors"
	"fmt"
)

// Kind names one of the fatal error classes.
type Kind string

const (
	// Configuration covers missing or unreadable config and manifest files.
	Configuration Kind = "configuration"
	// Environment covers unsupported OS families or architectures and hosts
	// with no usable fetch path.
	Environment Kind = "environment"
	// Network covers release discovery and download failures.
	Network Kind = "network"
	// Execution covers failed external commands, extractions, and setup
	// scripts.
	Execution Kind = "execution"
)

// Error attaches a Kind to an underlying error. It unwraps, so callers can
// keep using errors.Is/errors.As on the cause chain.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configf builds a Configuration-kind error. The format string may wrap a
// cause with %w.
func Configf(format string, a ...any) error {
	return &Error{Kind: Configuration, Err: fmt.Errorf(format, a...)}
}

// Envf builds an Environment-kind error.
func Envf(format string, a ...any) error {
	return &Error{Kind: Environment, Err: fmt.Errorf(format, a...)}
}

// Netf builds a Network-kind error.
func Netf(format string, a ...any) error {
	return &Error{Kind: Network, Err: fmt.Errorf(format, a...)}
}

// Execf builds an Execution-kind error.
func Execf(format string, a ...any) error {
	return &Error{Kind: Execution, Err: fmt.Errorf(format, a...)}
}

// KindOf reports the Kind carried anywhere in err's chain. The second return
// is false for plain errors that never passed through this package.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
