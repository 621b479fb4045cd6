package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestEKindKeepsSingleKind(t *testing.T) {
	err := EKind("submit answer", ErrPersistence, fmt.Errorf("increment score: %w", ErrGameNotFound))

	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence kind, got %v", err)
	}
	for _, k := range kinds {
		if k != ErrPersistence && errors.Is(err, k) {
			t.Fatalf("expected only persistence kind, %v also matches %v", err, k)
		}
	}
	if want := "submit answer: persistence failure: increment score: game not found"; err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestEKindKeepsMatchingCause(t *testing.T) {
	cause := fmt.Errorf("load: %w", ErrValidation)
	err := EKind("start session", ErrValidation, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay in the chain")
	}
}

func TestEClassifiesByKind(t *testing.T) {
	err := E("next question", ErrAnswerNotFound)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, ErrAnswerNotFound) {
		t.Fatalf("expected not-found chain, got %v", err)
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatalf("did not expect persistence kind")
	}

	plain := E("next question", errors.New("connection reset"))
	if KindOf(plain) != ErrPersistence {
		t.Fatalf("expected unclassified errors to be persistence failures")
	}
	if E("op", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
