package filter

import "github.com/siahsang/socialite/internal/validator"

// PageSize is fixed for every paginated listing.
const PageSize = 10

type Filter struct {
	Page int64
}

type Metadata struct {
	Page       int64 `json:"page"`
	PageSize   int64 `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
}

func NewFilter(page int64) Filter {
	return Filter{
		Page: page,
	}
}

func (f Filter) Limit() int64 {
	return PageSize
}

func (f Filter) Offset() int64 {
	return (f.Page - 1) * PageSize
}

func ValidateFilters(filters Filter, v *validator.Validator) {
	v.Check(filters.Page > 0, "page", "must be greater than 0")
	v.Check(filters.Page <= 10_000_000, "page", "must be a maximum of 10_000_000")
}

func NewMetadata(filters Filter, totalCount int64) Metadata {
	return Metadata{
		Page:       filters.Page,
		PageSize:   PageSize,
		TotalCount: totalCount,
	}
}
