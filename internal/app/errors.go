package app

import "errors"

var (
	// ErrUnknownPartition is returned when a named partition has no matches.
	ErrUnknownPartition = errors.New("unknown partition")
	// ErrReservedClub is returned when a club name would collide with the
	// combined partitions.
	ErrReservedClub = errors.New("reserved club name")
	// ErrRunFailed is returned when at least one partition or club failed.
	ErrRunFailed = errors.New("run failed")
)
