package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/storefront-checkout/internal/checkout"
)

// BuildPaymentLinkBody builds the HTML body for the payment link email
func BuildPaymentLinkBody(storeLabel, orderID, url string, items []checkout.LineItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; font-family: monospace;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
			</tr>`,
			html.EscapeString(item.Price),
			item.Quantity,
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1f6f5c; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Your order is waiting for payment.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<p style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background: #1f6f5c; color: white; padding: 14px 28px; border-radius: 5px; text-decoration: none; font-weight: bold;">Pay now</a>
		</p>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			The payment link expires after 24 hours. If you did not place this order, ignore this email.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(storeLabel),
		html.EscapeString(orderID),
		itemsHTML.String(),
		html.EscapeString(url),
	)
}
