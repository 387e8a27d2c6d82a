// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.
// Lookups of a missing row return sql.ErrNoRows, possibly wrapped.
package repository

// PageQuery holds limit/offset pagination parameters and an optional search term.
type PageQuery struct {
	Limit  int
	Offset int
	Term   string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
