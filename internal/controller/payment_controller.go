package controller

import (
	"billing-engine-be/internal/dto"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	OpenDispute(ctx *fiber.Ctx) error
}

type paymentController struct {
	paymentService service.IPaymentService
	disputeService service.IDisputeService
	mapper         *mapper.ResponseMapper
	auth           fiber.Handler
}

func NewPaymentController(
	paymentService service.IPaymentService,
	disputeService service.IDisputeService,
	mapper *mapper.ResponseMapper,
	auth fiber.Handler,
) IPaymentController {
	return &paymentController{
		paymentService: paymentService,
		disputeService: disputeService,
		mapper:         mapper,
		auth:           auth,
	}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments", c.auth)
	h.Get("/", c.List)
	h.Get("/:id", c.Detail)
	h.Post("/:id/disputes", c.OpenDispute)
}

func (c *paymentController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	page, perPage := pagination(ctx)

	payments, total, err := c.paymentService.ListPayments(ctx.Context(), userId, page, perPage)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success fetching payments", &dto.PaymentListResponse{
		Data: c.mapper.Payments(payments),
		Meta: c.mapper.Page(page, perPage, total),
	}))
}

func (c *paymentController) Detail(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	paymentId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	payment, err := c.paymentService.GetPayment(ctx.Context(), paymentId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching payment", c.mapper.Payment(payment)))
}

func (c *paymentController) OpenDispute(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	paymentId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.OpenDisputeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	dispute, err := c.disputeService.Open(ctx.Context(), paymentId, userId, entity.DisputeReason(req.Reason), req.Description)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Dispute opened", c.mapper.Dispute(dispute)))
}
