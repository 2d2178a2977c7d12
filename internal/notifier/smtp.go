package notifier

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPNotifier delivers plain-text goal summaries by email.
type SMTPNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Backoff is the first retry delay; it doubles on each attempt.
	Backoff time.Duration

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a notifier for the given relay.
func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		Backoff:  time.Second,
		sendMail: smtp.SendMail,
	}
}

// Send sends one message to a single recipient.
func (n *SMTPNotifier) Send(to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}
	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	msg := buildMessage(n.From, to, subject, body)
	addr := net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
	if err := n.sendMail(addr, auth, n.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (n *SMTPNotifier) SendWithRetry(ctx context.Context, to, subject, body string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.Send(to, subject, body); err != nil {
			lastErr = err
			if i == maxRetries {
				log.Printf("[WARN] mail send failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
				break
			}
			backoff := n.Backoff * time.Duration(1<<uint(i))
			log.Printf("[WARN] mail send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
