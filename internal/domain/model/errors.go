package model

import "errors"

// ErrMalformedMatch marks a record that is not a well-formed 2v2 result.
var ErrMalformedMatch = errors.New("malformed match")
