package domain

import "errors"

var (
	// ErrPayloadTooLarge is returned when an uploaded export exceeds the size cap.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedEncoding is returned when no candidate encoding decodes the export.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrStaleCandidate is returned when a link write finds either side
	// already claimed by a concurrent operation. Only the individual
	// pairing fails; the batch continues.
	ErrStaleCandidate = errors.New("stale candidate")

	// ErrNotFound is returned when a record does not exist in storage.
	ErrNotFound = errors.New("record not found")

	// ErrNoProposal is returned when confirming or rejecting a transaction
	// that has no proposed link.
	ErrNoProposal = errors.New("no proposed link")
)
