package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCorruptArtifact  = errors.New("corrupt json artifact")
	ErrAlreadyExists    = errors.New("configuration already exists")
	ErrDuplicateEntity  = errors.New("entity already present")
	ErrImmutableConfig  = errors.New("base configuration is immutable")
	ErrLanguageMismatch = errors.New("incompatible language")
	ErrReconciliation   = errors.New("reconciliation failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ReconciliationError carries enough context for the caller to decide whether
// to retry (resubmit a question) or surface a terminal message.
type ReconciliationError struct {
	DocPath    string
	ConfigPath string
	Label      string
	Err        error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile %s against %s: label %q: %v", e.DocPath, e.ConfigPath, e.Label, e.Err)
}

func (e *ReconciliationError) Unwrap() []error {
	return []error{ErrReconciliation, e.Err}
}
