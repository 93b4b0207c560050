package layout

import "fmt"

// Error reports a descriptor that cannot be compiled, a value that does not
// fit its field, or a record of the wrong length.
//
// Field is the zero-based field index, or -1 when the error concerns the
// record as a whole (value count, record length).
type Error struct {
	Field  int
	Kind   Kind
	Reason string
	Err    error // Underlying error, if any
}

func (e *Error) Error() string {
	if e.Field < 0 {
		return "layout: " + e.Reason
	}
	if e.Kind == "" {
		return fmt.Sprintf("layout: field %d: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("layout: field %d (%s): %s", e.Field, e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
