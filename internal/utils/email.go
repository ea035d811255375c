package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"samudra_back_end/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer envoie les e-mails transactionnels de la boutique.
type Mailer struct {
	cfg SMTPConfig
	log *logrus.Entry
}

func NewMailer(cfg SMTPConfig, log *logrus.Logger) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("utils: SMTP_HOST et MAIL_FROM requis")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mailer{cfg: cfg, log: log.WithField("component", "mailer")}, nil
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, order models.Order) error {
	html, err := OrderConfirmationHTML(order)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Order confirmed: %s", FormatINR(order.TotalPrice)))
	msg.SetBodyString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{"order_id": order.ID, "to": to}).Info("📤 envoi de la confirmation de commande")
	return client.DialAndSendWithContext(ctx, msg)
}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"inr": FormatINR,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Order confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f0f7fa; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #0e4d64;">Thank you, {{.Details.Name}}!</h2>
		<p>Your order has been placed and will be delivered fresh to:</p>
		<p>{{.Details.Address}}, {{.Details.City}} {{.Details.Pincode}}<br>{{.Details.Phone}}</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #e6f2f5;">
					<th style="padding: 10px; text-align: left;">Item</th>
					<th style="padding: 10px; text-align: left;">Qty</th>
					<th style="padding: 10px; text-align: left;">Price</th>
				</tr>
			</thead>
			<tbody>
				{{range .Lines}}<tr>
					<td style="padding: 10px;">{{.ProductName}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{inr .Price}}</td>
				</tr>{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{inr .Total}}</td>
				</tr>
			</tfoot>
		</table>
		<p style="color: #555;">Order reference: {{.ID}}</p>
	</div>
</body>
</html>`))

// OrderConfirmationHTML génère le corps HTML de la confirmation de commande.
func OrderConfirmationHTML(order models.Order) (string, error) {
	var buf bytes.Buffer
	err := orderConfirmationTmpl.Execute(&buf, map[string]any{
		"ID":      order.ID,
		"Details": order.DeliveryDetails,
		"Lines":   order.Items,
		"Total":   order.TotalPrice,
	})
	if err != nil {
		return "", fmt.Errorf("utils: rendu confirmation: %w", err)
	}
	return buf.String(), nil
}
