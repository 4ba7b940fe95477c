package pagination

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// Parse clamps page to >=1 and per_page to 1..MaxPageSize, defaulting
// empty or unparsable values.
func Parse(pageStr, perPageStr string) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return Params{Page: page, PerPage: perPage}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func TotalPages(totalRecords int64, perPage int) int64 {
	if perPage <= 0 {
		return 0
	}
	return (totalRecords + int64(perPage) - 1) / int64(perPage)
}
