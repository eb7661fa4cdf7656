package controller

import (
	"context"

	"billing-engine-be/internal/dto"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Subscribe(ctx *fiber.Ctx) error
	ChangePlan(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	UpdateAutoPay(ctx *fiber.Ctx) error
	UpdateAutoRenew(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
	mapper  *mapper.ResponseMapper
	auth    fiber.Handler
}

func NewSubscriptionController(service service.ISubscriptionService, mapper *mapper.ResponseMapper, auth fiber.Handler) ISubscriptionController {
	return &subscriptionController{service: service, mapper: mapper, auth: auth}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	// Public
	r.Get("/plans", c.GetPlans)

	h := r.Group("/subscription", c.auth)
	h.Get("/", c.Current)
	h.Get("/history", c.History)
	h.Post("/", c.Subscribe)
	h.Put("/plan", c.ChangePlan)
	h.Post("/cancel", c.Cancel)
	h.Put("/auto-pay", c.UpdateAutoPay)
	h.Put("/auto-renew", c.UpdateAutoRenew)
}

func (c *subscriptionController) GetPlans(ctx *fiber.Ctx) error {
	plans, err := c.service.ListPlans(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching plans", c.mapper.Plans(plans)))
}

func (c *subscriptionController) Current(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	sub, err := c.service.Current(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", c.mapper.Subscription(sub)))
}

func (c *subscriptionController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	subs, err := c.service.History(ctx.Context(), userId)
	if err != nil {
		return err
	}

	res := make([]*dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		res[i] = c.mapper.Subscription(sub)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription history", res))
}

func (c *subscriptionController) Subscribe(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubscribeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	sub, err := c.service.Subscribe(ctx.Context(), userId, req.PlanId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription created", c.mapper.Subscription(sub)))
}

func (c *subscriptionController) ChangePlan(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ChangePlanRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	sub, err := c.service.ChangePlan(ctx.Context(), userId, req.PlanId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan changed", c.mapper.Subscription(sub)))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	sub, err := c.service.Cancel(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription canceled", c.mapper.Subscription(sub)))
}

func (c *subscriptionController) UpdateAutoPay(ctx *fiber.Ctx) error {
	return c.toggle(ctx, "Auto-pay updated", c.service.UpdateAutoPay)
}

func (c *subscriptionController) UpdateAutoRenew(ctx *fiber.Ctx) error {
	return c.toggle(ctx, "Auto-renew updated", c.service.UpdateAutoRenew)
}

type toggleFunc func(ctx context.Context, userId uuid.UUID, enable bool) (*entity.Subscription, error)

func (c *subscriptionController) toggle(ctx *fiber.Ctx, message string, fn toggleFunc) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ToggleRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	sub, err := fn(ctx.Context(), userId, *req.Enabled)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(message, c.mapper.Subscription(sub)))
}
