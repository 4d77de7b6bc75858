package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps page and pageSize to usable values: anything below 1 falls
// back to the defaults and pageSize is capped at MaxPageSize.
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ParseParams reads page and pageSize from raw query strings.
// Missing or non-numeric values fall back to the defaults.
func ParseParams(rawPage, rawPageSize string) (int, int) {
	return Normalize(atoiOrZero(rawPage), atoiOrZero(rawPageSize))
}

// Offset returns the number of rows to skip for page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
