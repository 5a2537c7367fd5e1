package common

import (
	"errors"
)

// Contract violations shared by the core packages; callers match them with errors.Is
var (
	// ErrDimensionMismatch means operands of a similarity or indexing operation differ in dimension
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrIndexOutOfRange means a coordinate index is past the vector dimension
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidArgument means a count or a configuration value is out of bounds
	ErrInvalidArgument = errors.New("invalid argument")
)
