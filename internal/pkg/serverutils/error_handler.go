package serverutils

import (
	"errors"

	"billing-engine-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers as JSON envelopes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		status, body := errorBody(err)
		return ctx.Status(status).JSON(body)
	}
}

func errorBody(err error) (int, BaseResponse[any]) {
	if rule, ok := apperror.AsBusinessRule(err); ok {
		return fiber.StatusUnprocessableEntity, ValidationErrorResponse(rule.Error(), rule.Messages)
	}
	if apperror.IsNotFound(err) {
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, capitalize(err.Error()))
	}
	if apperror.IsForbidden(err) {
		return fiber.StatusForbidden, ErrorResponse(fiber.StatusForbidden, "This action is unauthorized.")
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorResponse(fe.Code, fe.Message)
	}
	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
