package data

import "math"

const (
	DefaultPage     = 0
	DefaultPageSize = 5
)

// Filters addresses one page of a collection. Page is zero based.
type Filters struct {
	Page     int
	PageSize int
}

func (f Filters) limit() int {
	return f.PageSize
}

// offset saturates instead of wrapping, so a huge page is past the end rather than negative.
func (f Filters) offset() int {
	if f.PageSize > 0 {
		switch {
		case f.Page > math.MaxInt/f.PageSize:
			return math.MaxInt
		case f.Page < math.MinInt/f.PageSize:
			return math.MinInt
		}
	}
	return f.Page * f.PageSize
}

type Page[T any] struct {
	Items         []T  `json:"items"`
	PageNumber    int  `json:"page_number"`
	PageSize      int  `json:"page_size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

func newPage[T any](items []T, totalRecords int, f Filters) Page[T] {
	totalPages := 0
	if f.PageSize > 0 {
		totalPages = totalRecords / f.PageSize
		if totalRecords%f.PageSize != 0 {
			totalPages++
		}
	}

	return Page[T]{
		Items:         items,
		PageNumber:    f.Page,
		PageSize:      f.PageSize,
		TotalElements: totalRecords,
		TotalPages:    totalPages,
		First:         f.Page == 0,
		Last:          f.Page >= totalPages-1,
	}
}
