package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the game engine matches exactly one
// of these with errors.Is.
var (
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrExhaustedPool is returned when no unseen question remains although
	// the game is not complete.
	ErrExhaustedPool = errors.New("question pool exhausted")
	// ErrPersistence marks a failed store operation.
	ErrPersistence = errors.New("persistence failure")
	// ErrConcurrencyConflict is returned when a uniqueness or lock check
	// rejected the operation. Callers may retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

var (
	// ErrGameNotFound is returned when a game id does not resolve.
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
	// ErrAnswerNotFound is returned when an answer id does not resolve.
	ErrAnswerNotFound = fmt.Errorf("answer %w", ErrNotFound)
	// ErrQuestionNotFound is returned when a question id does not resolve.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrCategoryNotFound is returned when a category id does not resolve.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

var kinds = []error{ErrValidation, ErrNotFound, ErrExhaustedPool, ErrPersistence, ErrConcurrencyConflict}

// Error is an engine failure tagged with the operation and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	if errors.Is(e.Err, e.Kind) {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// E wraps err for op. Errors that already carry a kind keep it; anything
// else is treated as a persistence failure.
func E(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// EKind wraps err for op with an explicit kind. A cause that carries a
// different kind keeps only its message, so the result matches one kind.
func EKind(op string, kind, err error) error {
	if err != nil && !errors.Is(err, kind) {
		for _, k := range kinds {
			if errors.Is(err, k) {
				err = errors.New(err.Error())
				break
			}
		}
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind sentinel matched by err, or ErrPersistence.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrPersistence
}
