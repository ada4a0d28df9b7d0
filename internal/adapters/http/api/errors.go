package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrStageFailed = errors.New("quality check unavailable")
)
