package controller

import (
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// pagination reads the raw page query; the service owns the limits.
func pagination(ctx *fiber.Ctx) (int, int) {
	return service.NormalizePage(ctx.QueryInt("page"), ctx.QueryInt("per_page"))
}

// parseBody decodes and validates the request body into req.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
