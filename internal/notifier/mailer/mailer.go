// Package mailer renders and sends the marketplace's transactional emails.
package mailer

import (
	"context"
	"fmt"

	"github.com/oneplanet-market/internal/domain/shared"
)

// Mailer delivers one rendered notification email
type Mailer interface {
	Send(ctx context.Context, event *shared.NotificationEvent) error
}

// Template holds the subject line and body skeleton for one notification kind
type Template struct {
	Subject string
	Body    string
}

// templates maps notification kinds to their email content. Bodies are
// rendered with text/template against the event's data map.
var templates = map[shared.NotificationKind]Template{
	shared.NotificationWelcome: {
		Subject: "Welcome to One Planet Market",
		Body: `Hi {{.name}},

Welcome to One Planet Market! Your account is ready and your eco journey
has begun. Every sustainable purchase earns experience points and moves
you up the leaderboard.

Happy shopping,
The One Planet Market team`,
	},
	shared.NotificationNewsletterConfirm: {
		Subject: "You're subscribed",
		Body: `Hi,

You're now subscribed to the One Planet Market newsletter. Expect
seasonal picks, producer stories and sustainability tips.

To unsubscribe, use the link at the bottom of any newsletter.`,
	},
	shared.NotificationOrderConfirmation: {
		Subject: "Order confirmed",
		Body: `Hi {{.name}},

Your order {{.order_id}} for {{.amount}} has been confirmed.
It saved an estimated {{.carbon_saved}} kg of CO2. Thank you for
shopping sustainably!`,
	},
	shared.NotificationPaymentFailed: {
		Subject: "Payment failed",
		Body: `Hi {{.name}},

The payment for your recent order did not go through, so the order was
cancelled. No money has been taken. You can try again from your cart at
any time.`,
	},
	shared.NotificationPasswordReset: {
		Subject: "Reset your password",
		Body: `Hi {{.name}},

A password reset was requested for your account. Use the token below
within the next hour to set a new password:

{{.token}}

If you did not request this, you can safely ignore this email.`,
	},
	shared.NotificationApplicationReceived: {
		Subject: "Producer application received",
		Body: `Hi {{.name}},

We received your application for {{.farm_name}}. Our team reviews
applications within a few working days and will let you know the outcome
by email.`,
	},
	shared.NotificationApplicationApproved: {
		Subject: "Producer application approved",
		Body: `Hi {{.name}},

Congratulations! Your application for {{.farm_name}} has been approved.
You can now list products and receive payouts to your wallet.`,
	},
	shared.NotificationApplicationRejected: {
		Subject: "Producer application update",
		Body: `Hi {{.name}},

Unfortunately we could not approve your application for {{.farm_name}}
at this time.

Reason: {{.reason}}

You are welcome to apply again once the issue is resolved.`,
	},
}

// TemplateFor resolves the template for a notification kind
func TemplateFor(kind shared.NotificationKind) (Template, error) {
	tpl, ok := templates[kind]
	if !ok {
		return Template{}, fmt.Errorf("no template for notification kind %q", kind)
	}
	return tpl, nil
}
