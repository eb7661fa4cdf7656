package mapper

import (
	"time"

	"billing-engine-be/internal/dto"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/money"
)

const dateLayout = "2006-01-02"

// ResponseMapper renders entities for the HTTP layer. today drives the
// is_overdue flag so responses agree with the services' clock.
type ResponseMapper struct {
	today func() time.Time
}

func NewResponseMapper(today func() time.Time) *ResponseMapper {
	return &ResponseMapper{today: today}
}

func (m *ResponseMapper) Plan(p *entity.Plan) *dto.PlanResponse {
	if p == nil {
		return nil
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &dto.PlanResponse{
		Id:             p.Id,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		PriceInCents:   int64(p.PriceInCents),
		PriceFormatted: money.Format(p.PriceInCents, p.Currency),
		Currency:       p.Currency,
		BillingCycle:   string(p.BillingCycle),
		TrialDays:      p.TrialDays,
		Features:       features,
	}
}

func (m *ResponseMapper) Plans(plans []*entity.Plan) []*dto.PlanResponse {
	res := make([]*dto.PlanResponse, len(plans))
	for i, p := range plans {
		res[i] = m.Plan(p)
	}
	return res
}

func (m *ResponseMapper) Subscription(s *entity.Subscription) *dto.SubscriptionResponse {
	if s == nil {
		return nil
	}
	return &dto.SubscriptionResponse{
		Id:                 s.Id,
		Status:             string(s.Status),
		HasAccess:          s.Status.HasAccess(),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEndsAt:        s.TrialEndsAt,
		CanceledAt:         s.CanceledAt,
		CancelAt:           s.CancelAt,
		AutoRenew:          s.AutoRenew,
		AutoPay:            s.AutoPay,
		Plan:               m.Plan(s.Plan),
	}
}

func (m *ResponseMapper) Invoice(i *entity.Invoice) *dto.InvoiceResponse {
	if i == nil {
		return nil
	}
	res := &dto.InvoiceResponse{
		Id:                 i.Id,
		InvoiceNumber:      i.InvoiceNumber,
		Status:             string(i.Status),
		AmountInCents:      int64(i.AmountInCents),
		AmountPaidInCents:  int64(i.AmountPaidInCents),
		AmountDueInCents:   int64(i.AmountDue()),
		AmountDueFormatted: money.Format(i.AmountDue(), i.Currency),
		Currency:           i.Currency,
		Description:        i.Description,
		DueDate:            i.DueDate.Format(dateLayout),
		IsOverdue:          i.IsOverdue(m.today()),
		PaidAt:             i.PaidAt,
		PeriodStart:        i.PeriodStart,
		PeriodEnd:          i.PeriodEnd,
	}
	if len(i.Payments) > 0 {
		res.Payments = m.Payments(i.Payments)
	}
	return res
}

func (m *ResponseMapper) Invoices(invoices []*entity.Invoice) []*dto.InvoiceResponse {
	res := make([]*dto.InvoiceResponse, len(invoices))
	for idx, i := range invoices {
		res[idx] = m.Invoice(i)
	}
	return res
}

func (m *ResponseMapper) Payment(p *entity.Payment) *dto.PaymentResponse {
	if p == nil {
		return nil
	}
	return &dto.PaymentResponse{
		Id:                p.Id,
		InvoiceId:         p.InvoiceId,
		PaymentMethodId:   p.PaymentMethodId,
		AmountInCents:     int64(p.AmountInCents),
		AmountFormatted:   money.Format(p.AmountInCents, p.Currency),
		Currency:          p.Currency,
		Status:            string(p.Status),
		PaymentMethodType: string(p.PaymentMethodType),
		PixQrCode:         p.PixQrCode,
		PixExpiresAt:      p.PixExpiresAt,
		BoletoUrl:         p.BoletoUrl,
		BoletoBarcode:     p.BoletoBarcode,
		BoletoExpiresAt:   p.BoletoExpiresAt,
		FailureReason:     p.FailureReason,
		PaidAt:            p.PaidAt,
		FailedAt:          p.FailedAt,
		CreatedAt:         p.CreatedAt,
	}
}

func (m *ResponseMapper) Payments(payments []*entity.Payment) []*dto.PaymentResponse {
	res := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		res[i] = m.Payment(p)
	}
	return res
}

// PaymentMethod never exposes the gateway token.
func (m *ResponseMapper) PaymentMethod(pm *entity.PaymentMethod) *dto.PaymentMethodResponse {
	if pm == nil {
		return nil
	}
	return &dto.PaymentMethodResponse{
		Id:                      pm.Id,
		Type:                    string(pm.Type),
		IsDefault:               pm.IsDefault,
		SupportsAutomaticCharge: pm.SupportsAutomaticCharge(),
		LastFour:                pm.LastFour,
		Brand:                   pm.Brand,
		ExpiryMonth:             pm.ExpiryMonth,
		ExpiryYear:              pm.ExpiryYear,
		HolderName:              pm.HolderName,
		PixKey:                  pm.PixKey,
		BankName:                pm.BankName,
		CreatedAt:               pm.CreatedAt,
	}
}

func (m *ResponseMapper) PaymentMethods(methods []*entity.PaymentMethod) []*dto.PaymentMethodResponse {
	res := make([]*dto.PaymentMethodResponse, len(methods))
	for i, pm := range methods {
		res[i] = m.PaymentMethod(pm)
	}
	return res
}

func (m *ResponseMapper) Dispute(d *entity.Dispute) *dto.DisputeResponse {
	if d == nil {
		return nil
	}
	return &dto.DisputeResponse{
		Id:               d.Id,
		PaymentId:        d.PaymentId,
		Status:           string(d.Status),
		Reason:           string(d.Reason),
		Description:      d.Description,
		GatewayDisputeId: d.GatewayDisputeId,
		IsWithdrawable:   d.Status.IsWithdrawable(),
		ResolvedAt:       d.ResolvedAt,
		WithdrawnAt:      d.WithdrawnAt,
		CreatedAt:        d.CreatedAt,
	}
}

func (m *ResponseMapper) Disputes(disputes []*entity.Dispute) []*dto.DisputeResponse {
	res := make([]*dto.DisputeResponse, len(disputes))
	for i, d := range disputes {
		res[i] = m.Dispute(d)
	}
	return res
}

func (m *ResponseMapper) Page(page, perPage int, total int64) dto.PageMeta {
	return dto.PageMeta{Page: page, PerPage: perPage, Total: total}
}
