package domain

import "errors"

var (
	// ErrNotFound covers missing hotels and missing competitor entries.
	ErrNotFound = errors.New("not found")
	// ErrCityNotFound means the location dataset has no entry for the city.
	ErrCityNotFound = errors.New("city not found")

	// ErrDuplicateCompetitor: the competitor key is already listed, any type.
	ErrDuplicateCompetitor = errors.New("competitor already listed")
	// ErrCompetitorLimit: the per-type capacity is exhausted.
	ErrCompetitorLimit = errors.New("competitor limit exceeded")
	// ErrSelfCompetitor: a hotel may not list itself.
	ErrSelfCompetitor = errors.New("hotel cannot compete with itself")

	// ErrMissingCredential: external search credential absent. Fatal.
	ErrMissingCredential = errors.New("search API key is required")
	// ErrUnauthorized: external search rejected the credential. Fatal.
	ErrUnauthorized = errors.New("search: unauthorized")
)
