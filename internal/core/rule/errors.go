package rule

import "errors"

var (
	// ErrUnknownTransformation is returned when a definition names an unregistered transform.
	ErrUnknownTransformation = errors.New("unknown transformation")

	// ErrUnknownComparator is returned when a definition names an unregistered comparator.
	ErrUnknownComparator = errors.New("unknown comparator")

	// ErrMalformedRule is returned when a definition does not have the expected shape,
	// or when a literal cannot be bound to the operand it is compared with.
	ErrMalformedRule = errors.New("malformed rule definition")

	// ErrDuplicateKey is returned when registering under a key that is already bound.
	ErrDuplicateKey = errors.New("duplicate registry key")
)
