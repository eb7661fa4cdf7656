package mapper

import (
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/model"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/money"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BillingMapper struct{}

func NewBillingMapper() *BillingMapper {
	return &BillingMapper{}
}

// Invoice

func (m *BillingMapper) InvoiceToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}
	var payments []*entity.Payment
	if len(i.Payments) > 0 {
		payments = make([]*entity.Payment, len(i.Payments))
		for idx, p := range i.Payments {
			payments[idx] = m.PaymentToEntity(p)
		}
	}
	return &entity.Invoice{
		Id:                i.Id,
		UserId:            i.UserId,
		SubscriptionId:    i.SubscriptionId,
		InvoiceNumber:     i.InvoiceNumber,
		Status:            entity.InvoiceStatus(i.Status),
		AmountInCents:     money.Cents(i.AmountInCents),
		AmountPaidInCents: money.Cents(i.AmountPaidInCents),
		Currency:          i.Currency,
		Description:       i.Description,
		DueDate:           clock.DateOf(time.Time(i.DueDate)),
		PaidAt:            i.PaidAt,
		PeriodStart:       i.PeriodStart,
		PeriodEnd:         i.PeriodEnd,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
		Payments:          payments,
	}
}

func (m *BillingMapper) InvoiceToModel(i *entity.Invoice) *model.Invoice {
	if i == nil {
		return nil
	}
	return &model.Invoice{
		Id:                i.Id,
		UserId:            i.UserId,
		SubscriptionId:    i.SubscriptionId,
		InvoiceNumber:     i.InvoiceNumber,
		Status:            string(i.Status),
		AmountInCents:     int64(i.AmountInCents),
		AmountPaidInCents: int64(i.AmountPaidInCents),
		Currency:          i.Currency,
		Description:       i.Description,
		DueDate:           datatypes.Date(clock.DateOf(i.DueDate)),
		PaidAt:            i.PaidAt,
		PeriodStart:       i.PeriodStart,
		PeriodEnd:         i.PeriodEnd,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// Payment

func (m *BillingMapper) PaymentToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:                p.Id,
		UserId:            p.UserId,
		InvoiceId:         p.InvoiceId,
		PaymentMethodId:   p.PaymentMethodId,
		AmountInCents:     money.Cents(p.AmountInCents),
		Currency:          p.Currency,
		Status:            entity.PaymentStatus(p.Status),
		PaymentMethodType: entity.PaymentMethodType(p.PaymentMethodType),
		Gateway:           p.Gateway,
		GatewayPaymentId:  p.GatewayPaymentId,
		GatewayResponse:   map[string]interface{}(p.GatewayResponse),
		PixQrCode:         p.PixQrCode,
		PixExpiresAt:      p.PixExpiresAt,
		BoletoUrl:         p.BoletoUrl,
		BoletoBarcode:     p.BoletoBarcode,
		BoletoExpiresAt:   p.BoletoExpiresAt,
		FailureReason:     p.FailureReason,
		PaidAt:            p.PaidAt,
		FailedAt:          p.FailedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *BillingMapper) PaymentToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:                p.Id,
		UserId:            p.UserId,
		InvoiceId:         p.InvoiceId,
		PaymentMethodId:   p.PaymentMethodId,
		AmountInCents:     int64(p.AmountInCents),
		Currency:          p.Currency,
		Status:            string(p.Status),
		PaymentMethodType: string(p.PaymentMethodType),
		Gateway:           p.Gateway,
		GatewayPaymentId:  p.GatewayPaymentId,
		GatewayResponse:   datatypes.JSONMap(p.GatewayResponse),
		PixQrCode:         p.PixQrCode,
		PixExpiresAt:      p.PixExpiresAt,
		BoletoUrl:         p.BoletoUrl,
		BoletoBarcode:     p.BoletoBarcode,
		BoletoExpiresAt:   p.BoletoExpiresAt,
		FailureReason:     p.FailureReason,
		PaidAt:            p.PaidAt,
		FailedAt:          p.FailedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// Payment method

func (m *BillingMapper) PaymentMethodToEntity(pm *model.PaymentMethod) *entity.PaymentMethod {
	if pm == nil {
		return nil
	}
	var deletedAt *time.Time
	if pm.DeletedAt.Valid {
		t := pm.DeletedAt.Time
		deletedAt = &t
	}
	return &entity.PaymentMethod{
		Id:           pm.Id,
		UserId:       pm.UserId,
		Type:         entity.PaymentMethodType(pm.Type),
		IsDefault:    pm.IsDefault,
		Gateway:      pm.Gateway,
		GatewayToken: pm.GatewayToken,
		LastFour:     pm.LastFour,
		Brand:        pm.Brand,
		ExpiryMonth:  pm.ExpiryMonth,
		ExpiryYear:   pm.ExpiryYear,
		HolderName:   pm.HolderName,
		PixKey:       pm.PixKey,
		BankName:     pm.BankName,
		CreatedAt:    pm.CreatedAt,
		UpdatedAt:    pm.UpdatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *BillingMapper) PaymentMethodToModel(pm *entity.PaymentMethod) *model.PaymentMethod {
	if pm == nil {
		return nil
	}
	out := &model.PaymentMethod{
		Id:           pm.Id,
		UserId:       pm.UserId,
		Type:         string(pm.Type),
		IsDefault:    pm.IsDefault,
		Gateway:      pm.Gateway,
		GatewayToken: pm.GatewayToken,
		LastFour:     pm.LastFour,
		Brand:        pm.Brand,
		ExpiryMonth:  pm.ExpiryMonth,
		ExpiryYear:   pm.ExpiryYear,
		HolderName:   pm.HolderName,
		PixKey:       pm.PixKey,
		BankName:     pm.BankName,
		CreatedAt:    pm.CreatedAt,
		UpdatedAt:    pm.UpdatedAt,
	}
	if pm.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *pm.DeletedAt, Valid: true}
	}
	return out
}

// Dispute

func (m *BillingMapper) DisputeToEntity(d *model.Dispute) *entity.Dispute {
	if d == nil {
		return nil
	}
	return &entity.Dispute{
		Id:               d.Id,
		UserId:           d.UserId,
		PaymentId:        d.PaymentId,
		Status:           entity.DisputeStatus(d.Status),
		Reason:           entity.DisputeReason(d.Reason),
		Description:      d.Description,
		GatewayDisputeId: d.GatewayDisputeId,
		ResolvedAt:       d.ResolvedAt,
		WithdrawnAt:      d.WithdrawnAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (m *BillingMapper) DisputeToModel(d *entity.Dispute) *model.Dispute {
	if d == nil {
		return nil
	}
	return &model.Dispute{
		Id:               d.Id,
		UserId:           d.UserId,
		PaymentId:        d.PaymentId,
		Status:           string(d.Status),
		Reason:           string(d.Reason),
		Description:      d.Description,
		GatewayDisputeId: d.GatewayDisputeId,
		ResolvedAt:       d.ResolvedAt,
		WithdrawnAt:      d.WithdrawnAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
