package controller

import (
	"billing-engine-be/internal/dto"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentMethodController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	SetDefault(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type paymentMethodController struct {
	service service.IPaymentMethodService
	mapper  *mapper.ResponseMapper
	auth    fiber.Handler
}

func NewPaymentMethodController(service service.IPaymentMethodService, mapper *mapper.ResponseMapper, auth fiber.Handler) IPaymentMethodController {
	return &paymentMethodController{service: service, mapper: mapper, auth: auth}
}

func (c *paymentMethodController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment-methods", c.auth)
	h.Get("/", c.List)
	h.Post("/", c.Add)
	h.Get("/:id", c.Detail)
	h.Put("/:id/default", c.SetDefault)
	h.Delete("/:id", c.Remove)
}

func (c *paymentMethodController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	methods, err := c.service.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching payment methods", c.mapper.PaymentMethods(methods)))
}

func (c *paymentMethodController) Detail(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	methodId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	method, err := c.service.Get(ctx.Context(), methodId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching payment method", c.mapper.PaymentMethod(method)))
}

func (c *paymentMethodController) Add(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.AddPaymentMethodRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	method, err := c.service.Add(ctx.Context(), userId, entity.PaymentMethodAttributes{
		Type:        entity.PaymentMethodType(req.Type),
		LastFour:    req.LastFour,
		Brand:       req.Brand,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		HolderName:  req.HolderName,
		PixKey:      req.PixKey,
		BankName:    req.BankName,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment method added", c.mapper.PaymentMethod(method)))
}

func (c *paymentMethodController) SetDefault(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	methodId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	method, err := c.service.SetDefault(ctx.Context(), methodId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Default payment method updated", c.mapper.PaymentMethod(method)))
}

func (c *paymentMethodController) Remove(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	methodId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Remove(ctx.Context(), methodId, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Payment method removed", nil))
}
