package mailer

import (
	"fmt"

	"github.com/rentalhub/rental-service/internal/config"
	"github.com/rentalhub/rental-service/internal/domain"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends booking decision notifications to customers.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	password string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

// SendBookingDecisionEmail notifies the customer of the admin's decision on
// their booking.
func (m *SMTPMailer) SendBookingDecisionEmail(toEmail string, booking *domain.Booking) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", decisionSubject(booking.Status))
	msg.SetBody("text/plain", decisionBody(booking))

	d := gomail.NewDialer(m.host, m.port, m.from, m.password)
	return d.DialAndSend(msg)
}

func decisionSubject(status domain.BookingStatus) string {
	if status == domain.BookingStatusApproved {
		return "Your booking has been approved"
	}
	return "Your booking has been rejected"
}

func decisionBody(booking *domain.Booking) string {
	if booking.Status == domain.BookingStatusApproved {
		return fmt.Sprintf(
			"Good news! Your booking %s from %s to %s has been approved.\n\nTotal price: %d",
			booking.ID,
			booking.FromDate.Format("2006-01-02"),
			booking.ToDate.Format("2006-01-02"),
			booking.Price,
		)
	}
	return fmt.Sprintf(
		"Unfortunately your booking %s from %s to %s has been rejected.",
		booking.ID,
		booking.FromDate.Format("2006-01-02"),
		booking.ToDate.Format("2006-01-02"),
	)
}
