package rulestore

import "errors"

// ErrConfiguration is returned when the rule document cannot be fetched or
// does not hold a JSON object.
var ErrConfiguration = errors.New("rule configuration unavailable")
