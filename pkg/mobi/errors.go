package mobi

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every error caused by malformed input.
var ErrFormat = errors.New("mobi: format error")

var (
	ErrInvalidMagic  = fmt.Errorf("%w: invalid container magic", ErrFormat)
	ErrMissingHeader = fmt.Errorf("%w: missing MOBI header", ErrFormat)
	ErrOutOfBounds   = fmt.Errorf("%w: out of bounds", ErrFormat)
	ErrInvalidTitle  = fmt.Errorf("%w: invalid title", ErrFormat)
)
