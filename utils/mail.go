package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

type EmailData struct {
	Name            string
	Message         string
	VerificationURL string
	LogoURL         string
	OrderNumber     string
}

// Mailer sends transactional email over plain SMTP. Sends are always
// synchronous and failures are the caller's to log; nothing retries.
type Mailer struct {
	Address  string
	Host     string
	From     string
	Password string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		Address:  os.Getenv("SMTP_ADDRESS"),
		Host:     os.Getenv("FROM_EMAIL_SMTP"),
		From:     os.Getenv("FROM_EMAIL"),
		Password: os.Getenv("FROM_EMAIL_PASSWORD"),
	}
}

func (m *Mailer) renderTemplate(data EmailData, templatePath string) (string, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) Send(emailTo string, emailSubject string, data EmailData, templatePath string) error {
	body, err := m.renderTemplate(data, templatePath)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.From, emailTo, emailSubject, body,
	)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(m.Address, auth, m.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWithAttachment sends a multipart message carrying one PDF
// attachment, used for invoice delivery.
func (m *Mailer) SendWithAttachment(emailTo, emailSubject string, data EmailData, templatePath, filename string, attachment []byte) error {
	body, err := m.renderTemplate(data, templatePath)
	if err != nil {
		return err
	}

	boundary := "sokohub-invoice-boundary"
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", emailTo)
	fmt.Fprintf(&msg, "Subject: %s\r\n", emailSubject)
	fmt.Fprintf(&msg, "MIME-version: 1.0;\r\nContent-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: application/pdf\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", filename)
	msg.WriteString(base64.StdEncoding.EncodeToString(attachment))
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(m.Address, auth, m.From, []string{emailTo}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
