package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// ListOptions provides pagination and filtering options for list operations.
type ListOptions struct {
	// Page is the page number to retrieve (1-indexed, default: 1).
	Page int

	// Limit is the number of items per page (default: 25, max: 500).
	Limit int

	// SortBy specifies the field to sort by (e.g., "last_name", "date_of_birth").
	SortBy string

	// SortOrder specifies the sort direction ("asc" or "desc", default: "asc").
	SortOrder string

	// Search filters persons by a case-insensitive match on first or last name.
	// Empty string means no filter.
	Search string

	// LivingOnly restricts results to living persons.
	LivingOnly bool
}

// Normalize applies defaults and validates the ListOptions.
func (o *ListOptions) Normalize() {
	// Whitelist validation for SortBy to prevent SQL injection
	allowedSortFields := map[string]bool{
		"last_name":     true,
		"first_name":    true,
		"date_of_birth": true,
		"created_at":    true,
		"id":            true,
	}

	if !allowedSortFields[o.SortBy] {
		o.SortBy = "last_name"
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "asc"
	}

	if o.Page < 1 {
		o.Page = 1
	}

	if o.Limit < 1 {
		o.Limit = 25
	}

	if o.Limit > 500 {
		o.Limit = 500
	}
}

// Offset calculates the offset for SQL queries based on page and limit.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// PaginatedResult represents a paginated result set.
type PaginatedResult[T any] struct {
	// Items is the slice of results for the current page.
	Items []T

	// Total is the total number of items across all pages.
	Total int

	// Page is the current page number (1-indexed).
	Page int

	// PageSize is the number of items per page.
	PageSize int

	// HasMore indicates whether there are more pages available.
	HasMore bool
}
