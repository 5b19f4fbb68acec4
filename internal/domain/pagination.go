package domain

import "strconv"

// PageSize is the fixed number of items returned by paginated listings
const PageSize = 8

// ParsePage reads a 1-based page number. Missing or invalid values yield 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Skip returns the number of items before the given page
func Skip(page int) int64 {
	if page < 1 {
		page = 1
	}
	return int64(page-1) * PageSize
}
