package request

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks client input that failed envelope construction.
	// The dispatcher surfaces it as 400.
	ErrMalformed = errors.New("malformed request")

	// ErrMalformedCookie is returned for an unparsable Cookie header.
	ErrMalformedCookie = fmt.Errorf("%w: invalid cookie header", ErrMalformed)

	// ErrBodyTooLarge is returned when body materialization exceeds the
	// configured maximum.
	ErrBodyTooLarge = errors.New("request body exceeds configured maximum")
)
