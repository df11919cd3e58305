package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var templates = map[string]string{
	"required":    "{field} is required",
	"gt":          "{field} must be greater than {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"max":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"email":       "{field} must be a valid email address",
	"datetime":    "{field} must use the format {param}",
	"uuid":        "{field} must be a valid UUID",
	"url":         "{field} must be a valid URL",
	"nefield":     "{field} must differ from {param}",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
}

// message renders the first violation that has a template, falling back to the validator's own text.
func message(err error) string {
	var violations val.ValidationErrors
	if !errors.As(err, &violations) {
		return err.Error()
	}

	for _, violation := range violations {
		template, ok := templates[violation.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", violation.Field(), "{param}", violation.Param()).Replace(template)
	}

	return violations.Error()
}

func missingFields(err error) []string {
	var violations val.ValidationErrors
	if !errors.As(err, &violations) {
		return nil
	}

	var fields []string

	for _, violation := range violations {
		if violation.Tag() == "required" {
			fields = append(fields, violation.Field())
		}
	}

	return fields
}
