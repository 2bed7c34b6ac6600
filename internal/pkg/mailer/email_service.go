package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendConversationSummary(toEmail string, summary ConversationSummary) error
}

type ConversationSummary struct {
	Name            string
	Mode            string
	DurationSeconds int
	Transcript      []string
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

// NewEmailService returns nil when host is empty so callers can treat a
// missing SMTP setup as "mail disabled".
func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	if host == "" {
		return nil
	}
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendConversationSummary(toEmail string, summary ConversationSummary) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your %s conversation", summary.Mode))
	m.SetBody("text/html", RenderSummary(summary))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send summary to %s: %w", toEmail, err)
	}
	return nil
}

func RenderSummary(summary ConversationSummary) string {
	var lines strings.Builder
	for _, line := range summary.Transcript {
		lines.WriteString("<p style=\"margin: 4px 0;\">")
		lines.WriteString(html.EscapeString(line))
		lines.WriteString("</p>")
	}
	if len(summary.Transcript) == 0 {
		lines.WriteString("<p><em>No transcript was captured for this call.</em></p>")
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Here is a recap of your conversation with your %s.</p>
			<p><strong>Duration:</strong> %d:%02d</p>
			%s
		</div>
	`, html.EscapeString(summary.Name), html.EscapeString(strings.ToLower(summary.Mode)),
		summary.DurationSeconds/60, summary.DurationSeconds%60, lines.String())
}
