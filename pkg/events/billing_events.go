package events

// Billing event types. The NATS subject is "<prefix>.<type>".
const (
	PaymentSucceeded       = "payment.succeeded"
	PaymentFailed          = "payment.failed"
	InvoiceDueSoon         = "invoice.due_soon"
	InvoiceOverdue         = "invoice.overdue"
	SubscriptionAutoPayOff = "subscription.auto_pay_disabled"
)
