package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"billing-engine-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so they line up with business rule keys.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateRequest returns a BusinessRuleError keyed by json field name.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	rule := &apperror.BusinessRuleError{Messages: make(map[string][]string)}
	for _, fe := range fieldErrors {
		rule.Messages[fe.Field()] = append(rule.Messages[fe.Field()], validationMessage(fe))
	}
	return rule
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", fe.Field())
	case "gt", "min":
		return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("The %s field may not be greater than %s.", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("The %s field must be %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}
