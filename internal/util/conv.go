package util

import (
	"strconv"
)

// MustParseUint converts a string to an unsigned integer, returning 0 when
// parsing fails.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// MustParseInt converts a string to an int, returning the fallback when
// parsing fails.
func MustParseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// ParsePagination normalizes raw page/limit query values. Unparseable,
// zero or negative values fall back to page 1 / limit 20 so callers can
// divide by limit safely.
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page = MustParseInt(pageStr, 1)
	if page < 1 {
		page = 1
	}
	limit = MustParseInt(limitStr, 20)
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

// TotalPages computes the page count for a listing; a non-positive limit
// yields 0 rather than dividing by it.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}
