package gallery

import "fmt"

// OutOfRangeError reports a GoTo target outside [0, Length).
// It signals a bookkeeping bug in the caller, so the index is never clamped.
type OutOfRangeError struct {
	Index  int
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("gallery: index %d out of range [0, %d)", e.Index, e.Length)
}

// Next returns the index after current, wrapping to 0 past the last image.
// A non-positive length returns current unchanged.
func Next(current, length int) int {
	if length <= 0 {
		return current
	}
	return (current + 1) % length
}

// Previous returns the index before current, wrapping to length-1 before 0.
// A non-positive length returns current unchanged.
func Previous(current, length int) int {
	if length <= 0 {
		return current
	}
	return (current - 1 + length) % length
}

// GoTo validates index against length.
func GoTo(index, length int) (int, error) {
	if index < 0 || index >= length {
		return 0, &OutOfRangeError{Index: index, Length: length}
	}
	return index, nil
}
