package repository

import "errors"

// ErrStorage is returned when a lookup against the reports table could not
// be completed. Finding an existing report is not an error.
var ErrStorage = errors.New("reports table lookup failed")
