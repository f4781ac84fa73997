package gonet

import "errors"

// Sentinel errors for the three failure classes of the decoder and the
// geometry engine. Callers discriminate with errors.Is; every wrapped
// message carries the offending size or value.
var (
	// ErrFormat marks malformed input: a packed buffer whose length does
	// not divide into 3-byte groups, a container smaller than its raw
	// payload, an unsupported SVG command, an unclosed path, or sensor
	// dimensions that cannot form 2x2 tiles.
	ErrFormat = errors.New("format error")

	// ErrDimensionMismatch marks a shape disagreement between a mask and a
	// channel, or between two containers combined arithmetically.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrGeometry marks invalid numeric geometry, such as a negative
	// radius or an inner radius larger than the outer one.
	ErrGeometry = errors.New("geometry error")
)
