package pipeline

import (
	"errors"
	"fmt"
)

// SequenceError exposes the sequence index of the input a mapper or
// reducer failure is attributed to.
type SequenceError interface {
	error
	Unwrap() error
	SequenceIndex() uint64
}

type sequenceTaggedError struct {
	err   error
	index uint64
}

func newSequenceTaggedError(kind, err error, index uint64) error {
	if err == nil {
		return nil
	}
	return &sequenceTaggedError{err: fmt.Errorf("%w: %w", kind, err), index: index}
}

func (e *sequenceTaggedError) Error() string { return e.err.Error() }

func (e *sequenceTaggedError) Unwrap() error { return e.err }

func (e *sequenceTaggedError) SequenceIndex() uint64 { return e.index }

// Format supports %+v (index-qualified detail) alongside the plain %s/%v/%q forms.
func (e *sequenceTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "item(index=%d): %+v", e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractSequenceIndex returns the sequence index attached to err, if any.
func ExtractSequenceIndex(err error) (uint64, bool) {
	var se SequenceError
	if errors.As(err, &se) {
		return se.SequenceIndex(), true
	}
	return 0, false
}
