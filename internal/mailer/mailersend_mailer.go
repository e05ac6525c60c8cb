package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendRegistrationConfirmed(toEmail, toName, eventTitle string, eventDate time.Time) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("You're registered for %s", eventTitle)
	when := eventDate.Format("Monday, January 2, 2006 at 15:04")
	html := fmt.Sprintf(`
		<h2>Registration confirmed</h2>
		<p>Hi %s,</p>
		<p>Your spot at <strong>%s</strong> is confirmed.</p>
		<p>When: %s</p>
		<p>If your plans change, you can cancel your registration from your dashboard.</p>
	`, toName, eventTitle, when)
	text := fmt.Sprintf("Hi %s,\n\nYour spot at %s is confirmed.\nWhen: %s", toName, eventTitle, when)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendRegistrationCancelled(toEmail, toName, eventTitle string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Registration cancelled: %s", eventTitle)
	html := fmt.Sprintf(`
		<h2>Registration cancelled</h2>
		<p>Hi %s,</p>
		<p>Your registration for <strong>%s</strong> has been cancelled.</p>
		<p>If this wasn't you, please log in and register again.</p>
	`, toName, eventTitle)
	text := fmt.Sprintf("Hi %s,\n\nYour registration for %s has been cancelled.", toName, eventTitle)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
