package flattree

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an entry with
	// no visible row and no backing entry.
	ErrNotFound = errors.New("flattree: entry not found")

	// ErrOutOfRange is returned for a row index outside [0, Len).
	ErrOutOfRange = errors.New("flattree: row index out of range")
)

// InvariantError reports a divergence between the incrementally maintained
// row sequence and a fresh rebuild. The flat tree self-heals by adopting
// the rebuilt sequence; the error is surfaced for logging.
type InvariantError struct {
	Index       int    // first diverging row index (-1 for length mismatch)
	Incremental string // entry id at Index in the incremental sequence ("" if absent)
	Rebuilt     string // entry id at Index in the rebuilt sequence ("" if absent)
	LenGot      int
	LenWant     int
}

func (e *InvariantError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("flattree: row count diverged: %d rows, rebuild has %d", e.LenGot, e.LenWant)
	}
	return fmt.Sprintf("flattree: row %d diverged: have %q, rebuild has %q", e.Index, e.Incremental, e.Rebuilt)
}
