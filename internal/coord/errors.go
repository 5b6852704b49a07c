package coord

import (
	"fmt"
)

// MalformedOrdinateError indicates ordinate text that is not a plain signed decimal
type MalformedOrdinateError struct {
	Offset int    // Byte offset of the offending token
	Token  string // Offending token, possibly empty
	Reason string
}

func (e *MalformedOrdinateError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed ordinate at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("malformed ordinate %q at offset %d: %s", e.Token, e.Offset, e.Reason)
}

// IncompleteCoordinateError indicates an ordinate sequence that ended in the
// middle of a coordinate tuple or circular arc
type IncompleteCoordinateError struct {
	Ordinates int // Ordinates left over
	Dimension int
	Arc       bool
}

func (e *IncompleteCoordinateError) Error() string {
	if e.Arc {
		return fmt.Sprintf("incomplete arc: %d trailing control points", e.Ordinates)
	}
	return fmt.Sprintf("incomplete coordinate: %d trailing ordinates for dimension %d",
		e.Ordinates, e.Dimension)
}
