package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-orders/pkg/mailer"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/payloads"
)

// orderConfirmationEmail renders the plain text confirmation for a new order.
func orderConfirmationEmail(event payloads.OrderCreatedEvent) mailer.Message {
	var b strings.Builder
	name := strings.TrimSpace(event.CustomerName)
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your order %s placed on %s.\n\n", event.OrderID, event.OrderDate.Format("2006-01-02 15:04"))
	b.WriteString("Items:\n")
	for _, line := range event.Items {
		fmt.Fprintf(&b, "  - %s x%d @ %s = %s\n", line.ProductName, line.Quantity, line.PriceEnd.StringFixed(2), line.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", event.Total.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s\n", event.PaymentType.Title())
	fmt.Fprintf(&b, "Ship to: %s, %s, %s\n", event.Street, event.City, event.State)
	b.WriteString("\nWe will let you know when your order ships.\n")

	return mailer.Message{
		To:      event.Email,
		Subject: fmt.Sprintf("Order %s confirmed", shortID(event.OrderID.String())),
		Body:    b.String(),
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return strings.ToUpper(id[:8])
}
