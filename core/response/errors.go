package response

import "errors"

var (
	// ErrInvalidStatusCode is returned when a status code is not a 3-digit
	// integer in the 100-999 range.
	ErrInvalidStatusCode = errors.New("status code must be a 3-digit integer")

	// ErrReasonTooLong is returned when a reason phrase exceeds the maximum
	// allowed length.
	ErrReasonTooLong = errors.New("reason phrase exceeds maximum length")

	// ErrNoContent is returned when content is requested from an envelope
	// that carries none.
	ErrNoContent = errors.New("envelope has no content")
)
