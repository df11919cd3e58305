package shared

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/shared/dto"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

// parseOptional returns nil for an empty or malformed query value.
func parseOptional[T any](value string, parse func(string) (T, error)) *T {
	if value == "" {
		return nil
	}

	parsed, err := parse(value)
	if err != nil {
		log.Warn().Err(err).Str("value", value).Msg("ignoring malformed query value")

		return nil
	}

	return &parsed
}

func ConvertStringToBool(value string) *bool {
	return parseOptional(value, strconv.ParseBool)
}

func ConvertStringToInt(value string) *int {
	return parseOptional(value, strconv.Atoi)
}

// CalculateTotalPage never reports fewer than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// TransformFields maps the non-zero `db`-tagged fields of a struct (or pointer to one) into
// an update set stamped with modified_at and modified_by. Zero values are skipped, so false
// and 0 can only be written through pointer fields or an explicit map.
func TransformFields(data any, username string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	updatedFields := make(map[string]any, typ.NumField()+2)

	for index := range val.NumField() {
		column := typ.Field(index).Tag.Get("db")
		field := val.Field(index)

		if column == "" || column == "-" || field.IsZero() {
			continue
		}

		updatedFields[column] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins a prefix and its parts with ':'.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a deterministic key from pagination and filter values.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	values := make([]string, 0, len(args))
	for _, name := range slices.Sorted(maps.Keys(args)) {
		values = append(values, fmt.Sprintf("%s=%v", name, args[name]))
	}

	return BuildCacheKey(
		prefix,
		strconv.Itoa(params.Page),
		strconv.Itoa(params.Limit),
		params.SortBy,
		params.SortDir,
		where,
		strings.Join(values, "&"),
	)
}

// SnakeCase turns "roomId" into "room_id". Keys already in snake_case are returned unchanged.
func SnakeCase(key string) string {
	var builder strings.Builder

	for idx, r := range key {
		if unicode.IsUpper(r) {
			if idx > 0 {
				builder.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		builder.WriteRune(r)
	}

	return builder.String()
}

// InvalidateCaches clears every key under prefix. Failures are logged and never returned.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+cacheKeySeparator+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
