package insight

import "errors"

var (
	// ErrParse marks a date or numeric value that could not be interpreted.
	ErrParse = errors.New("parse error")
	// ErrData marks structurally valid but semantically inconsistent statistics.
	ErrData = errors.New("data error")
)
