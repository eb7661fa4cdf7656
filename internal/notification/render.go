package notification

import (
	"fmt"

	"billing-engine-be/pkg/events"
)

// Message is a rendered notification, ready for a delivery channel.
type Message struct {
	Subject string
	Body    string
}

func str(payload map[string]interface{}, key string) string {
	if v, ok := payload[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Render builds the user-facing message for a billing event. ok is false for
// event types that have no user-facing message.
func Render(event events.Event) (msg Message, ok bool) {
	p := event.Payload()

	switch event.EventType() {
	case events.PaymentSucceeded:
		return Message{
			Subject: fmt.Sprintf("Payment received for invoice %s", str(p, "invoice_number")),
			Body: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment confirmed</h2>
			<p>We received your payment of <strong>%s</strong> for invoice %s.</p>
		</div>
	`, str(p, "amount_formatted"), str(p, "invoice_number")),
		}, true

	case events.PaymentFailed:
		return Message{
			Subject: fmt.Sprintf("Payment failed for invoice %s", str(p, "invoice_number")),
			Body: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your payment did not go through</h2>
			<p>The payment of <strong>%s</strong> for invoice %s failed: %s</p>
			<p>Please try again or use another payment method.</p>
		</div>
	`, str(p, "amount_formatted"), str(p, "invoice_number"), str(p, "failure_reason")),
		}, true

	case events.InvoiceDueSoon:
		return Message{
			Subject: fmt.Sprintf("Invoice %s is due on %s", str(p, "invoice_number"), str(p, "due_date")),
			Body: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Upcoming invoice</h2>
			<p>Invoice %s of <strong>%s</strong> is due on %s.</p>
		</div>
	`, str(p, "invoice_number"), str(p, "amount_due_formatted"), str(p, "due_date")),
		}, true

	case events.InvoiceOverdue:
		return Message{
			Subject: fmt.Sprintf("Invoice %s is overdue", str(p, "invoice_number")),
			Body: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Invoice overdue</h2>
			<p>Invoice %s of <strong>%s</strong> was due on %s and is still open.</p>
		</div>
	`, str(p, "invoice_number"), str(p, "amount_due_formatted"), str(p, "due_date")),
		}, true

	case events.SubscriptionAutoPayOff:
		return Message{
			Subject: "Auto-pay was turned off",
			Body: `
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Auto-pay disabled</h2>
			<p>Your default payment method can no longer be charged automatically, so auto-pay was turned off.</p>
			<p>Add a card or bank debit method and enable auto-pay again.</p>
		</div>
	`,
		}, true
	}

	return Message{}, false
}
