package report

import "errors"

// ErrWriteReport wraps any failure to create or write a report file.
var ErrWriteReport = errors.New("write report")
