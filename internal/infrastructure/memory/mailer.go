package memory

import (
	"context"
	"log"
	"sync"

	"github.com/acme/identity-service/internal/domain"
)

// Mailer logs outbound mail instead of delivering it. Used in local
// development and by handler tests to observe dispatches.
type Mailer struct {
	mu   sync.Mutex
	sent []SentMail
}

type SentMail struct {
	Kind      string // "verify_email" | "password_reset"
	To        string
	FirstName string
	URL       string
}

func NewMailer() *Mailer { return &Mailer{} }

func (m *Mailer) SendVerificationEmail(ctx context.Context, u domain.User, url string) error {
	m.record(SentMail{Kind: "verify_email", To: u.Email, FirstName: u.FirstName, URL: url})
	log.Printf("[mem-mail] verify email: to=%s url=%s", u.Email, url)
	return nil
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, u domain.User, url string) error {
	m.record(SentMail{Kind: "password_reset", To: u.Email, FirstName: u.FirstName, URL: url})
	log.Printf("[mem-mail] password reset: to=%s url=%s", u.Email, url)
	return nil
}

func (m *Mailer) record(s SentMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
}

// Sent returns a copy of everything dispatched so far.
func (m *Mailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
