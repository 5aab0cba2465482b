package keyspace

import "errors"

var (
	// ErrNotConnected reports an operation attempted after the session was
	// closed. It always propagates to the caller.
	ErrNotConnected = errors.New("session is not connected")

	// ErrKeyNotFound reports that a key does not exist (or expired before
	// the call reached it).
	ErrKeyNotFound = errors.New("key not found")

	// ErrWrongType reports a type-specific operation issued against a key
	// holding a different kind of value. Callers are expected to resolve
	// the declared type before mutating.
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

	// ErrUnsupportedType reports a full read or write attempted on a type
	// this package does not manipulate (streams, unknown module types).
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrInvalidDocument reports an export document missing its required
	// fields. Validation happens before any destructive step.
	ErrInvalidDocument = errors.New("invalid export document")
)
