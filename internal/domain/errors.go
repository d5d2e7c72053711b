package domain

import "errors"

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("catalog item not found")
	// ErrModelTaken signals a (tenant, normalized model) uniqueness violation.
	ErrModelTaken = errors.New("normalized model already taken for tenant")
	// ErrAliasExists signals a duplicate normalized alias for (item, kind).
	ErrAliasExists = errors.New("alias already exists")
	// ErrLookupUnavailable classifies a failed or timed-out lookup provider.
	// The resolver maps it to a None outcome; it never reaches the caller.
	ErrLookupUnavailable = errors.New("lookup provider unavailable")
	// ErrInvalidInput signals malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)
