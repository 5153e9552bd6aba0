package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/example/storefront-checkout/internal/checkout"
)

// Service handles email sending via SMTP
type Service struct {
	host       string
	port       string
	from       string
	storeLabel string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(host, port, from, storeLabel string) *Service {
	return &Service{
		host:       host,
		port:       port,
		from:       from,
		storeLabel: storeLabel,
		sendMail:   smtp.SendMail,
	}
}

// SendPaymentLink emails the checkout link for an order
func (s *Service) SendPaymentLink(ctx context.Context, to, orderID, url string, items []checkout.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := fmt.Sprintf("%s: complete your payment for order %s", s.storeLabel, shortID(orderID))
	body := BuildPaymentLinkBody(s.storeLabel, orderID, url, items)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
