package domain

import "errors"

// Authentication errors raised by the token codec and the request gate
var (
	ErrAuthMissing          = errors.New("authorization header required")
	ErrAuthMalformed        = errors.New("malformed credential")
	ErrAuthExpired          = errors.New("credential expired")
	ErrAuthInvalidSignature = errors.New("invalid credential signature")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// Store errors
var (
	ErrPoolExhausted    = errors.New("connection pool exhausted")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)
