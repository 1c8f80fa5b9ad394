package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// Repositories hold no business logic; multi-statement operations that must
// be atomic (allocation, reservation) are single repository methods so the
// implementation can scope them to one transaction.

import "errors"

// ErrConflict is returned when an insert loses to an existing document or an
// active reservation holding the same (type, reference id) pair. The service
// layer translates it into its user-facing conflict error.
var ErrConflict = errors.New("reference id already taken")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
