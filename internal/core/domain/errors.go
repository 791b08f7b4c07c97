package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// DisambiguationError is returned by a content source when a title maps to
// several valid pages. Options keeps the source's own ordering.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	if e == nil {
		return "disambiguation"
	}
	return fmt.Sprintf("%q is ambiguous: %s", e.Title, strings.Join(e.Options, ", "))
}

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

// AsDisambiguation unwraps a DisambiguationError anywhere in the chain.
func AsDisambiguation(err error) (*DisambiguationError, bool) {
	var d *DisambiguationError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
