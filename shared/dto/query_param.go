package dto

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"lodge/shared/constant"
	"lodge/shared/failure"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads paging and sorting from the query string. Unparseable or
// non-positive numbers are ignored. With withDefaults the first page of
// DefaultValueLimit rows is assumed.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	values := r.URL.Query()

	if page, ok := positive(values.Get(constant.RequestParamPage)); ok {
		q.Page = page
	}

	if limit, ok := positive(values.Get(constant.RequestParamLimit)); ok {
		q.Limit = limit
	}

	if sortBy := values.Get(constant.RequestParamSortBy); sortBy != constant.Empty {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !withDefaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

func positive(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// Sortable restricts SortBy to the given columns and qualifies it with table.
// An empty SortBy is left for the caller's default ordering.
func (q *QueryParams) Sortable(table string, columns ...string) error {
	if q.SortBy == constant.Empty {
		return nil
	}

	if !slices.Contains(columns, q.SortBy) {
		return failure.BadRequestFromString("sort_by must be one of " + strings.Join(columns, " ")) //nolint:wrapcheck
	}

	q.SortBy = table + "." + q.SortBy

	if q.SortDir == constant.Empty {
		q.SortDir = SortDirAsc
	}

	return nil
}
