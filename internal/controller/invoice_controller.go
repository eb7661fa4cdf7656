package controller

import (
	"billing-engine-be/internal/dto"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInvoiceController interface {
	RegisterRoutes(r fiber.Router)
	Dashboard(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Pay(ctx *fiber.Ctx) error
}

type invoiceController struct {
	invoiceService service.IInvoiceService
	paymentService service.IPaymentService
	mapper         *mapper.ResponseMapper
	auth           fiber.Handler
}

func NewInvoiceController(
	invoiceService service.IInvoiceService,
	paymentService service.IPaymentService,
	mapper *mapper.ResponseMapper,
	auth fiber.Handler,
) IInvoiceController {
	return &invoiceController{
		invoiceService: invoiceService,
		paymentService: paymentService,
		mapper:         mapper,
		auth:           auth,
	}
}

func (c *invoiceController) RegisterRoutes(r fiber.Router) {
	r.Get("/billing/dashboard", c.auth, c.Dashboard)

	h := r.Group("/invoices", c.auth)
	h.Get("/", c.List)
	h.Get("/:id", c.Detail)
	h.Post("/:id/pay", c.Pay)
}

func (c *invoiceController) Dashboard(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.invoiceService.Dashboard(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Billing dashboard", &dto.DashboardResponse{
		OutstandingBalanceInCents: int64(res.OutstandingBalance),
		OutstandingBalance:        money.Format(res.OutstandingBalance, res.Currency),
		OpenInvoices:              res.OpenInvoices,
		OverdueInvoices:           res.OverdueInvoices,
		NextDue:                   c.mapper.Invoice(res.NextDue),
		Subscription:              c.mapper.Subscription(res.Subscription),
	}))
}

func (c *invoiceController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var status *entity.InvoiceStatus
	if raw := ctx.Query("status"); raw != "" {
		s := entity.InvoiceStatus(raw)
		status = &s
	}
	page, perPage := pagination(ctx)

	invoices, total, err := c.invoiceService.List(ctx.Context(), userId, status, page, perPage)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success fetching invoices", &dto.InvoiceListResponse{
		Data: c.mapper.Invoices(invoices),
		Meta: c.mapper.Page(page, perPage, total),
	}))
}

func (c *invoiceController) Detail(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	invoiceId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	invoice, err := c.invoiceService.Detail(ctx.Context(), invoiceId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching invoice", c.mapper.Invoice(invoice)))
}

func (c *invoiceController) Pay(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	invoiceId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.InitiatePaymentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	input := service.InitiatePaymentInput{
		MethodType:      entity.PaymentMethodType(req.PaymentMethodType),
		PaymentMethodId: req.PaymentMethodId,
	}
	if req.AmountInCents != nil {
		amount := money.Cents(*req.AmountInCents)
		input.AmountInCents = &amount
	}

	payment, err := c.paymentService.InitiatePayment(ctx.Context(), invoiceId, userId, input)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment "+string(payment.Status), c.mapper.Payment(payment)))
}
