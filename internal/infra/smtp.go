package infra

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"bebidaspos/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP not configured")

// Mailer wraps SMTP configuration for sending receipts with PDF attachments.
// Delivery goes through a circuit breaker so a dead SMTP server fails fast
// instead of tying up every receipt worker.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string

	cb   *gobreaker.CircuitBreaker[struct{}]
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       newMailBreaker(),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func newMailBreaker() *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("mailer: circuit breaker state changed")
		},
	})
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// SendReceipt sends a PDF receipt to the customer.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	_, err := m.cb.Execute(func() (struct{}, error) {
		return struct{}{}, m.send(e, m.addr, auth)
	})
	return err
}
