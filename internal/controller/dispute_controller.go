package controller

import (
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDisputeController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Withdraw(ctx *fiber.Ctx) error
}

type disputeController struct {
	service service.IDisputeService
	mapper  *mapper.ResponseMapper
	auth    fiber.Handler
}

func NewDisputeController(service service.IDisputeService, mapper *mapper.ResponseMapper, auth fiber.Handler) IDisputeController {
	return &disputeController{service: service, mapper: mapper, auth: auth}
}

func (c *disputeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/disputes", c.auth)
	h.Get("/", c.List)
	h.Get("/:id", c.Detail)
	h.Post("/:id/withdraw", c.Withdraw)
}

func (c *disputeController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	disputes, err := c.service.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching disputes", c.mapper.Disputes(disputes)))
}

func (c *disputeController) Detail(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	disputeId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	dispute, err := c.service.Get(ctx.Context(), disputeId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching dispute", c.mapper.Dispute(dispute)))
}

func (c *disputeController) Withdraw(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	disputeId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	dispute, err := c.service.Withdraw(ctx.Context(), disputeId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dispute withdrawn", c.mapper.Dispute(dispute)))
}
