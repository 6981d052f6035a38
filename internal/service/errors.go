package service

import "errors"

var (
	// ErrInvalidArgument marks malformed or out-of-range input. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoData marks a well-formed query that matched zero observations.
	// It is a normal result, not a failure.
	ErrNoData = errors.New("no data")
)
