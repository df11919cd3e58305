package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterOperatorLess      = "less"
	FilterOperatorGreater   = "greater"
	FilterPlainQuery        = "plan"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

// comparisons maps binary operators onto their SQL form.
var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
	FilterOperatorLess:      "<",
	FilterOperatorGreater:   ">",
}

// Filter renders one predicate with sqlx named args. ArgName defaults to Field and must be unique within a query.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like in not_eq less_eq greater_eq less greater"`
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column := f.column()

	arg := f.ArgName
	if arg == "" {
		arg = f.Field
	}

	if sqlOp, ok := comparisons[f.Operator]; ok {
		args[arg] = f.Value

		return fmt.Sprintf("%s %s :%s", column, sqlOp, arg), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		args[arg] = fmt.Sprintf("%%%s%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, arg), args
	case FilterOperatorIn:
		return f.inClause(column, arg, args)
	case FilterPlainQuery:
		query, _ := f.Value.(string)

		return "(" + query + ")", args
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	case FilterIsNull:
		return column + " IS NULL", args
	}

	return "", args
}

// inClause expands a slice into one named arg per element. A non-slice value is inlined as-is.
func (f *Filter) inClause(column, arg string, args map[string]any) (string, map[string]any) {
	values := reflect.ValueOf(f.Value)

	if kind := values.Kind(); kind != reflect.Slice && kind != reflect.Array {
		return fmt.Sprintf("%s IN (%v)", column, f.Value), args
	}

	if values.Len() == 0 {
		return "FALSE", args
	}

	names := make([]string, values.Len())

	for idx := range values.Len() {
		name := fmt.Sprintf("%s_%d", arg, idx)
		args[name] = values.Index(idx).Interface()
		names[idx] = ":" + name
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(names, ", ")), args
}

// FilterGroup joins Filters (Filter or nested FilterGroup values) with Operator.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			clause string
			part   map[string]any
		)

		switch filter := item.(type) {
		case Filter:
			clause, part = filter.GetWhereClause()
		case FilterGroup:
			clause, part = filter.GetWhereClause()
		default:
			continue
		}

		if clause == "" {
			continue
		}

		clauses = append(clauses, clause)
		maps.Copy(args, part)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
