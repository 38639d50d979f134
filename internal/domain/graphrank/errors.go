package graphrank

import "errors"

// ErrUnknownEdgePolicy is returned for an edge policy other than accumulate or overwrite.
var ErrUnknownEdgePolicy = errors.New("unknown edge policy")
