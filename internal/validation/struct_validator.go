package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator with the dataset-specific
// rules registered:
//
//	column         - a known OWID column name
//	numericcolumn  - a known numeric OWID column name
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterValidation("column", isKnownColumn)
		v.RegisterValidation("numericcolumn", isNumericColumn)

		// Report yaml names so errors match what users write in config files.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// ValidateStruct validates v and folds every field failure into a single
// VALIDATION AppError.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid value", err)
	}

	msgs := make([]string, 0, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
		fields = append(fields, fe.Namespace())
	}
	return apperrors.NewAppValidationError(strings.Join(msgs, "; ")).
		WithContext("fields", fields)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value())
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param())
	case "column":
		return fmt.Sprintf("%s: unknown column %q", fe.Namespace(), fe.Value())
	case "numericcolumn":
		return fmt.Sprintf("%s: %q is not a numeric column", fe.Namespace(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

func isKnownColumn(fl validator.FieldLevel) bool {
	return domain.Column(fl.Field().String()).IsKnown()
}

func isNumericColumn(fl validator.FieldLevel) bool {
	return domain.Column(fl.Field().String()).IsNumeric()
}
