package parset

import "errors"

var (
	// ErrSchema indicates a malformed parameter-set definition
	// (empty or duplicate keys).
	ErrSchema = errors.New("parset: malformed schema")

	// ErrUnknownKey indicates an operation referenced a key absent
	// from the schema.
	ErrUnknownKey = errors.New("parset: unknown key")

	// ErrDuplicateKey indicates a schema extension collided with an
	// existing key.
	ErrDuplicateKey = errors.New("parset: duplicate key")

	// ErrInvalidValue indicates a value outside the declared options
	// for its key.
	ErrInvalidValue = errors.New("parset: value not among allowed options")

	// ErrWrongType indicates a value whose kind is not among the
	// declared kinds for its key, or a non-callable assigned to a
	// callable slot.
	ErrWrongType = errors.New("parset: value has disallowed kind")

	// ErrValidation indicates missing required keys or unset keys that
	// are not allowed to be unset.
	ErrValidation = errors.New("parset: key validation failed")

	// ErrNoSection indicates that configuration output was requested
	// without a top-level section name to write it under.
	ErrNoSection = errors.New("parset: no top-level section name available")

	// ErrConfigSyntax indicates malformed configuration text.
	ErrConfigSyntax = errors.New("parset: malformed configuration line")
)
