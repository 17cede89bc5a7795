package store

import "errors"

// Client-facing failures. Anything else returned by the store is a server fault.
var (
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrAmbiguousProductName = errors.New("product name matches more than one product")
	ErrInvalidPrice         = errors.New("price must be a non-negative finite number")
	ErrInvalidRole          = errors.New("role must be 'admin' or 'user'")
	ErrInvalidPassword      = errors.New("password must be at most 72 bytes")
)
