package sink

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

var _ output.SinkPort = (*Email)(nil)

// Email delivers the text report over SMTP. One attempt, no delivery
// guarantee. The connection carries the context deadline so a stalled
// server cannot hold the run open.
type Email struct {
	host string
	port string
	user string
	pass string
	from string
	to   []string
}

func NewEmail(host, port, user, pass, from string, to []string) *Email {
	return &Email{host: host, port: port, user: user, pass: pass, from: from, to: to}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Publish(ctx context.Context, report entity.RunReport) error {
	if len(e.to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	subject := fmt.Sprintf("Solar report: %s", report.Location.Query())
	msg := strings.Join([]string{
		"From: " + e.from,
		"To: " + strings.Join(e.to, ", "),
		"Subject: " + subject,
		"",
		TextReport(report),
	}, "\r\n")

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(e.host, e.port))
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, e.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if e.user != "" {
		if err := c.Auth(smtp.PlainAuth("", e.user, e.pass, e.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(e.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range e.to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return c.Quit()
}
