// Package email sends the owner-facing notification emails. Sends are always
// best-effort: a failed notification is logged and counted, never allowed to
// fail the order or contact submission that triggered it.
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/models"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type Sender interface {
	SendOrderNotification(order models.Order) error
	SendContactNotification(msg models.ContactMessage) error
}

type SMTPSender struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewSMTPSender(cfg *config.Config, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

var orderTmpl = template.Must(template.New("order").Parse(`
<h1>New Order Received</h1>
<p><strong>Order ID:</strong> {{.ID}}</p>
<p><strong>Customer:</strong> {{.CustomerName}} ({{.CustomerEmail}}{{if .CustomerPhone}}, {{.CustomerPhone}}{{end}})</p>
<p><strong>Shipping address:</strong> {{.ShippingAddress}}</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Product</th><th>Qty</th><th>Unit price</th></tr>
  {{range .Items}}<tr><td>{{if .ProductName}}{{.ProductName}}{{else}}{{.ProductID}}{{end}}</td><td>{{.Quantity}}</td><td>${{printf "%.2f" .Price}}</td></tr>{{end}}
</table>
<p>Subtotal: ${{printf "%.2f" .Subtotal}}<br>
Shipping: ${{printf "%.2f" .Shipping}}<br>
{{if .Tax}}Tax: ${{printf "%.2f" .Tax}}<br>{{end}}
<strong>Total: ${{printf "%.2f" .Total}}</strong></p>
`))

var contactTmpl = template.Must(template.New("contact").Parse(`
<h1>New Contact Message</h1>
<p><strong>From:</strong> {{.Name}} ({{.Email}}{{if .Phone}}, {{.Phone}}{{end}})</p>
{{if .Subject}}<p><strong>Subject:</strong> {{.Subject}}</p>{{end}}
<p>{{.Message}}</p>
`))

func (s *SMTPSender) SendOrderNotification(order models.Order) error {
	var body bytes.Buffer
	if err := orderTmpl.Execute(&body, order); err != nil {
		return fmt.Errorf("render order email: %w", err)
	}
	subject := fmt.Sprintf("New Order %s - Nujuum Arts", order.ID)
	return s.send(subject, body.String())
}

func (s *SMTPSender) SendContactNotification(msg models.ContactMessage) error {
	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, msg); err != nil {
		return fmt.Errorf("render contact email: %w", err)
	}
	subject := "New Contact Message - Nujuum Arts"
	if msg.Subject != "" {
		subject = fmt.Sprintf("Contact: %s - Nujuum Arts", msg.Subject)
	}
	return s.send(subject, body.String())
}

func (s *SMTPSender) send(subject, htmlBody string) error {
	if s.cfg.SMTP.Recipient == "" {
		s.logger.Warn("No notification recipient configured, skipping email")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", s.cfg.SMTP.Recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTP.Host, s.cfg.SMTP.Port, s.cfg.SMTP.User, s.cfg.SMTP.Password)
	d.SSL = s.cfg.SMTP.Port == 465

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
