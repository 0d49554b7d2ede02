package pak

import "fmt"

// Defensive validation for this package's public constructors. Internal
// algebra (NextSibling, the ranged crypto helpers) stays total and uses
// clamping or silent no-ops on corrupt input, per this package's design —
// these checks instead guard the handful of places a nil or negative
// argument would otherwise panic rather than degrade gracefully.

// validateKey checks that key is present.
func validateKey(key *Key) error {
	if key == nil {
		return NewValidationError("key", nil, "key cannot be nil", ErrInvalidKey)
	}
	return nil
}

// validateBuffer checks that buf is present.
func validateBuffer(buf []byte, name string) error {
	if buf == nil {
		return NewValidationError(name, nil, "buffer cannot be nil", ErrNilBuffer)
	}
	return nil
}

// validateOffset checks that offset is not negative.
func validateOffset(offset int, name string) error {
	if offset < 0 {
		return NewValidationError(name, offset, "offset cannot be negative", ErrNegativeOffset)
	}
	return nil
}

// validateSize checks that size falls within [minSize, maxSize]. A maxSize
// of 0 means unbounded.
func validateSize(size, minSize, maxSize int, name string) error {
	if size < minSize {
		return NewValidationError(name, size, fmt.Sprintf("size too small: got %d, minimum is %d", size, minSize), nil)
	}
	if maxSize > 0 && size > maxSize {
		return NewValidationError(name, size, fmt.Sprintf("size too large: got %d, maximum is %d", size, maxSize), nil)
	}
	return nil
}
