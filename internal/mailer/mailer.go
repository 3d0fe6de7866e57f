package mailer

import (
	"fmt"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer notifies an operator mailbox about new listings.
type SMTPMailer struct {
	from   string
	to     string
	dialer sender
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		to:     cfg.NotifyEmail,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *SMTPMailer) SendPropertyCreated(p *domain.Property) error {
	if err := m.dialer.DialAndSend(m.propertyCreatedMessage(p)); err != nil {
		return fmt.Errorf("send listing %d notification: %w", p.Code, err)
	}
	return nil
}

func (m *SMTPMailer) propertyCreatedMessage(p *domain.Property) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", "New listing #"+strconv.FormatInt(p.Code, 10)+": "+p.Title)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Listing #%d %q was published.\n\nAddress: %s\nLocation: %s\nOperation: %s\nPrice: %.2f / %.2f\nRooms: %d\n",
		p.Code, p.Title, p.Address, p.Location, p.OperationType, p.PriceLocal, p.PriceForeign, p.Rooms,
	))
	return msg
}
