package fileparser

import "errors"

// ErrInvalidConfig is returned when a configuration file cannot be parsed.
// Parse failures never surface as errors; they are reported in the
// Document's Error field.
var ErrInvalidConfig = errors.New("fileparser: invalid configuration")
