package sysprops

import "errors"

var (
	// ErrNameTooLong rejects keys at or past the name bound before any
	// I/O happens.
	ErrNameTooLong = errors.New("sysprops: property name exceeds bound")
	// ErrValueTooLong rejects values at or past the value bound before
	// any I/O happens.
	ErrValueTooLong = errors.New("sysprops: property value exceeds bound")
	// ErrNoReply marks an exchange the service closed without ever
	// confirming; GET and LIST need at least one reply record to trust
	// the result.
	ErrNoReply = errors.New("sysprops: property service closed without replying")
)
