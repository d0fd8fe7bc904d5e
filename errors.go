package gazetteer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. The typed errors below unwrap to one of these, so callers
// can branch with errors.Is and still reach the details with errors.As.
var (
	ErrUnknownField        = errors.New("unknown field")
	ErrPlaceConflict       = errors.New("place conflict")
	ErrPlaceNotFound       = errors.New("place not found")
	ErrAmbiguousPlace      = errors.New("ambiguous place reference")
	ErrInvalidPlace        = errors.New("invalid place")
	ErrNoName              = errors.New("place has no name")
	ErrEmptyIdentifierPath = errors.New("identifier path has no components")
)

// UnknownFieldError is returned when a place is given a field it has no
// accumulator for.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// PlaceConflict is returned by Register when a candidate reuses an id but
// contradicts the registered record on a shared field.
type PlaceConflict struct {
	ID        string
	Field     string
	Existing  string
	Candidate string
}

func (e *PlaceConflict) Error() string {
	return fmt.Sprintf("place %q: conflicting %s: %q vs. %q", e.ID, e.Field, e.Existing, e.Candidate)
}

func (e *PlaceConflict) Unwrap() error { return ErrPlaceConflict }

// PlaceNotFound is returned by Resolve when neither the id map nor the name
// index yields a place.
type PlaceNotFound struct {
	Term string
}

func (e *PlaceNotFound) Error() string {
	return fmt.Sprintf("could not find %q", e.Term)
}

func (e *PlaceNotFound) Unwrap() error { return ErrPlaceNotFound }

// AmbiguousPlaceReference is returned by Resolve when a name maps to more
// than one id.
type AmbiguousPlaceReference struct {
	Term string
	IDs  []string
}

func (e *AmbiguousPlaceReference) Error() string {
	return fmt.Sprintf("%q is ambiguous: %s", e.Term, strings.Join(e.IDs, ", "))
}

func (e *AmbiguousPlaceReference) Unwrap() error { return ErrAmbiguousPlace }
