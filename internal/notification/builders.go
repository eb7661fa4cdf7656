package notification

import (
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/pkg/events"
)

const dateLayout = "2006-01-02"

func newEvent(eventType string, at time.Time, data map[string]interface{}) events.BaseEvent {
	return events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: at,
	}
}

func paymentPayload(payment *entity.Payment, invoice *entity.Invoice) map[string]interface{} {
	return map[string]interface{}{
		"user_id":             payment.UserId.String(),
		"payment_id":          payment.Id.String(),
		"invoice_id":          invoice.Id.String(),
		"invoice_number":      invoice.InvoiceNumber,
		"payment_method_type": string(payment.PaymentMethodType),
		"amount_in_cents":     int64(payment.AmountInCents),
		"amount_formatted":    money.Format(payment.AmountInCents, payment.Currency),
		"amount_due_in_cents": int64(invoice.AmountDue()),
		"currency":            payment.Currency,
	}
}

func PaymentSucceeded(payment *entity.Payment, invoice *entity.Invoice, at time.Time) events.Event {
	data := paymentPayload(payment, invoice)
	data["invoice_status"] = string(invoice.Status)
	if payment.PaidAt != nil {
		data["paid_at"] = payment.PaidAt.UTC().Format(time.RFC3339)
	}
	return newEvent(events.PaymentSucceeded, at, data)
}

func PaymentFailed(payment *entity.Payment, invoice *entity.Invoice, at time.Time) events.Event {
	data := paymentPayload(payment, invoice)
	data["failure_reason"] = payment.FailureReason
	return newEvent(events.PaymentFailed, at, data)
}

func invoicePayload(invoice *entity.Invoice) map[string]interface{} {
	return map[string]interface{}{
		"user_id":              invoice.UserId.String(),
		"invoice_id":           invoice.Id.String(),
		"invoice_number":       invoice.InvoiceNumber,
		"amount_due_in_cents":  int64(invoice.AmountDue()),
		"amount_due_formatted": money.Format(invoice.AmountDue(), invoice.Currency),
		"currency":             invoice.Currency,
		"due_date":             invoice.DueDate.Format(dateLayout),
	}
}

func InvoiceDueSoon(invoice *entity.Invoice, days int, at time.Time) events.Event {
	data := invoicePayload(invoice)
	data["days_until_due"] = days
	return newEvent(events.InvoiceDueSoon, at, data)
}

func InvoiceOverdue(invoice *entity.Invoice, today time.Time, at time.Time) events.Event {
	data := invoicePayload(invoice)
	data["days_overdue"] = int(today.Sub(invoice.DueDate).Hours() / 24)
	return newEvent(events.InvoiceOverdue, at, data)
}

func AutoPayDisabled(sub *entity.Subscription, reason string, at time.Time) events.Event {
	return newEvent(events.SubscriptionAutoPayOff, at, map[string]interface{}{
		"user_id":         sub.UserId.String(),
		"subscription_id": sub.Id.String(),
		"auto_pay":        false,
		"reason":          reason,
	})
}
