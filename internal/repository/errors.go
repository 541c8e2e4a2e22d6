package repository

import "errors"

var (
	// ErrTransport covers every failed call to the statistics endpoint: network errors,
	// non-2xx statuses and unreadable bodies.
	ErrTransport = errors.New("failed to fetch stats")

	ErrSessionNotFound    = errors.New("dashboard session not found")
	ErrSubmissionInFlight = errors.New("a submission is already in progress for this session")
)
