package codec

import "errors"

var (
	// ErrCodepointOutOfRange is returned when a character cannot be framed as a single non-zero byte.
	ErrCodepointOutOfRange = errors.New("codepoint out of range")

	// ErrPayloadTooLarge is returned when a bitstream does not fit the buffer's capacity.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInvalidBit is returned when a bitstream element is neither 0 nor 1.
	ErrInvalidBit = errors.New("invalid bit value")

	// ErrInvalidScan is returned for a scan that selects no channels.
	ErrInvalidScan = errors.New("invalid scan")
)
