package store

import "errors"

var (
	// ErrWrongType signals a typed operation targeted a key holding a
	// different value type (§3 invariant 1, §6).
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// ErrNotInteger and ErrNotFloat are parse failures surfaced verbatim
	// by the dispatcher (§7 Arity/Type).
	ErrNotInteger = errors.New("value is not an integer or out of range")
	ErrNotFloat   = errors.New("value is not a valid float")
	ErrNaNScore   = errors.New("value is not a valid float")
)
