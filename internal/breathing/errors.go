package breathing

import "errors"

var (
	errNoTechnique = errors.New("breathing: no technique selected")

	// ErrClosed is returned by Machine.Start after Close.
	ErrClosed = errors.New("breathing: machine closed")
)
