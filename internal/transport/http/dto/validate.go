package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acme/identity-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct runs the validator tags and maps the first failure onto
// the domain error taxonomy so handlers never see validator types.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return domain.ErrInvalidField("body", err.Error())
	}

	fe := verrs[0]
	field := jsonFieldName(fe)

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	case "min":
		if field == "password" || field == "new_password" {
			return domain.ErrWeakPassword("min length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "min length "+fe.Param())
	case "max":
		return domain.ErrInvalidField(field, "max length "+fe.Param())
	default:
		return domain.ErrInvalidField(field, fe.Tag())
	}
}

// jsonFieldName lower-snake-cases the struct field the way the JSON
// tags spell it. Enough for the field names this API uses.
func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "FirstName":
		return "firstName"
	case "LastName":
		return "lastName"
	case "NewPassword":
		return "new_password"
	default:
		return strings.ToLower(fe.Field())
	}
}
