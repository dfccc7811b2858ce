package dtsp

import "errors"

var (
	// ErrUnsupportedChar indicates a character with no DTSP code point.
	ErrUnsupportedChar = errors.New("dtsp: unsupported character")

	// ErrMissingControls indicates a sequence without the expected
	// START/END handshake markers.
	ErrMissingControls = errors.New("dtsp: START/END handshake markers not found")
)
