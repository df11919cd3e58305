package dto_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"lodge/shared/constant"
	"lodge/shared/dto"
	"lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	meta := model.NewMetadata("admin-1", createdAt)
	meta.ModifiedAt = createdAt.Add(time.Hour)
	meta.ModifiedBy = "staff-2"

	var out dto.Metadata
	out.FromModel(meta)

	assert.Equal(t, timezone.Format(createdAt, constant.DateFormat), out.CreatedAt)
	assert.Equal(t, timezone.Format(createdAt.Add(time.Hour), constant.DateFormat), out.ModifiedAt)
	assert.Equal(t, "admin-1", out.CreatedBy)
	assert.Equal(t, "staff-2", out.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name: "with all valid parameters",
			queryParams: map[string]string{
				"page":     "2",
				"limit":    "20",
				"sort_by":  "name",
				"sort_dir": "ASC",
			},
			defaultRequest: false,
			expected: dto.QueryParams{
				Page:    2,
				Limit:   20,
				SortBy:  "name",
				SortDir: "ASC",
			},
		},
		{
			name:           "with default request enabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name:           "with default request disabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: false,
			expected: dto.QueryParams{
				Page:    0,
				Limit:   0,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with invalid page parameter",
			queryParams: map[string]string{
				"page": "invalid",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with negative page parameter",
			queryParams: map[string]string{
				"page": "-1",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with zero page parameter",
			queryParams: map[string]string{
				"page": "0",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with invalid limit parameter",
			queryParams: map[string]string{
				"limit": "invalid",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with negative limit parameter",
			queryParams: map[string]string{
				"limit": "-10",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with partial parameters and defaults enabled",
			queryParams: map[string]string{
				"page":    "3",
				"sort_by": "email",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    3,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "email",
				SortDir: "", // Empty when not provided
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a URL with query parameters
			baseURL := "http://example.com/test"
			u, err := url.Parse(baseURL)
			if err != nil {
				t.Fatalf("failed to parse URL: %v", err)
			}

			// Add query parameters
			query := u.Query()
			for key, value := range tt.queryParams {
				query.Set(key, value)
			}
			u.RawQuery = query.Encode()

			// Create HTTP request
			req, err := http.NewRequest("GET", u.String(), nil)
			if err != nil {
				t.Fatalf("failed to create request: %v", err)
			}

			// Test the method
			queryParams := &dto.QueryParams{}
			queryParams.FromRequest(req, tt.defaultRequest)

			// Verify results
			if queryParams.Page != tt.expected.Page {
				t.Errorf("expected Page to be %d, got %d", tt.expected.Page, queryParams.Page)
			}
			if queryParams.Limit != tt.expected.Limit {
				t.Errorf("expected Limit to be %d, got %d", tt.expected.Limit, queryParams.Limit)
			}
			if queryParams.SortBy != tt.expected.SortBy {
				t.Errorf("expected SortBy to be %s, got %s", tt.expected.SortBy, queryParams.SortBy)
			}
			if queryParams.SortDir != tt.expected.SortDir {
				t.Errorf("expected SortDir to be %s, got %s", tt.expected.SortDir, queryParams.SortDir)
			}
		})
	}
}

func TestSortDirectionConstants(t *testing.T) {
	if dto.SortDirAsc != "ASC" {
		t.Errorf("expected SortDirAsc to be 'ASC', got %s", dto.SortDirAsc)
	}
	if dto.SortDirDesc != "DESC" {
		t.Errorf("expected SortDirDesc to be 'DESC', got %s", dto.SortDirDesc)
	}
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.Filter
		where  string
		args   map[string]any
	}{
		{
			name:   "eq with table",
			filter: dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "pending", Table: "bookings"},
			where:  "bookings.status = :status",
			args:   map[string]any{"status": "pending"},
		},
		{
			name:   "less with arg name",
			filter: dto.Filter{Field: "check_in", ArgName: "stay_end", Operator: dto.FilterOperatorLess, Value: "2024-01-15"},
			where:  "check_in < :stay_end",
			args:   map[string]any{"stay_end": "2024-01-15"},
		},
		{
			name:   "greater with arg name",
			filter: dto.Filter{Field: "check_out", ArgName: "stay_start", Operator: dto.FilterOperatorGreater, Value: "2024-01-10"},
			where:  "check_out > :stay_start",
			args:   map[string]any{"stay_start": "2024-01-10"},
		},
		{
			name:   "greater or equal",
			filter: dto.Filter{Field: "capacity", Operator: dto.FilterOperatorGreaterEq, Value: 3},
			where:  "capacity >= :capacity",
			args:   map[string]any{"capacity": 3},
		},
		{
			name:   "in slice",
			filter: dto.Filter{Field: "room_id", Operator: dto.FilterOperatorIn, Value: []string{"a", "b"}},
			where:  "room_id IN (:room_id_0, :room_id_1)",
			args:   map[string]any{"room_id_0": "a", "room_id_1": "b"},
		},
		{
			name:   "empty in matches nothing",
			filter: dto.Filter{Field: "room_id", Operator: dto.FilterOperatorIn, Value: []string{}},
			where:  "FALSE",
			args:   map[string]any{},
		},
		{
			name:   "like lowercases both sides",
			filter: dto.Filter{Field: "guest_name", Operator: dto.FilterOperatorLike, Value: "Ann"},
			where:  "LOWER(guest_name) LIKE LOWER(:guest_name)",
			args:   map[string]any{"guest_name": "%Ann%"},
		},
		{
			name:   "is null",
			filter: dto.Filter{Field: "last_login", Operator: dto.FilterIsNull},
			where:  "last_login IS NULL",
			args:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: "room-1"},
			dto.Filter{Field: "status", Operator: dto.FilterOperatorNotEq, Value: "cancelled"},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(room_id = :room_id AND status != :status)", where)
	assert.Equal(t, map[string]any{"room_id": "room-1", "status": "cancelled"}, args)

	empty := dto.FilterGroup{}
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)

	nested := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "confirmed"},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "guest_name", Operator: dto.FilterOperatorLike, Value: "ann"},
					dto.Filter{Field: "guest_email", Operator: dto.FilterOperatorLike, Value: "ann"},
				},
			},
			dto.FilterGroup{},
		},
	}

	where, _ = nested.GetWhereClause()
	assert.Equal(t, "(status = :status AND (LOWER(guest_name) LIKE LOWER(:guest_name) OR LOWER(guest_email) LIKE LOWER(:guest_email)))", where)
}

func TestQueryParams_Sortable(t *testing.T) {
	tests := []struct {
		name     string
		params   dto.QueryParams
		expected dto.QueryParams
		wantErr  bool
	}{
		{
			name:     "empty keeps default ordering",
			params:   dto.QueryParams{Page: 1},
			expected: dto.QueryParams{Page: 1},
		},
		{
			name:     "allowed column is qualified",
			params:   dto.QueryParams{SortBy: "check_in", SortDir: "DESC"},
			expected: dto.QueryParams{SortBy: "bookings.check_in", SortDir: "DESC"},
		},
		{
			name:     "direction defaults to ascending",
			params:   dto.QueryParams{SortBy: "total_price"},
			expected: dto.QueryParams{SortBy: "bookings.total_price", SortDir: "ASC"},
		},
		{
			name:    "unknown column is rejected",
			params:  dto.QueryParams{SortBy: "id; DROP TABLE bookings"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params

			err := params.Sortable("bookings", "check_in", "check_out", "total_price", "created_at")

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}
