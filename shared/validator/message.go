package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// messages maps validation tags to human-readable templates. Tags
// without an entry fall back to the library's default wording.
var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"email":    "{field} must be a valid email address",
	"datetime": "{field} must be a date in {param} format",
	"uuid4":    "{field} must be a valid UUID",
}

func message(err error) string {
	var valErrors val.ValidationErrors

	if errors.As(err, &valErrors) {
		for _, valErr := range valErrors {
			template := messages[valErr.Tag()]
			if template == "" {
				continue
			}

			template = strings.ReplaceAll(template, "{field}", valErr.Field())
			template = strings.ReplaceAll(template, "{param}", valErr.Param())

			return template
		}

		return valErrors.Error()
	}

	return err.Error()
}
