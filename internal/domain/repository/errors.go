package repository

import "errors"

// Errors returned by QuoteSource implementations.
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrNoPrice       = errors.New("quote has no price")
	ErrRateLimited   = errors.New("quote source rate limited")
)
