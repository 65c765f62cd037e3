package report

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// MailConfig holds SMTP settings for report delivery
type MailConfig struct {
	Enabled     bool
	SMTPHost    string
	SMTPPort    int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	UseTLS      bool
	UseSTARTTLS bool
	Recipients  []string
}

// DefaultMailConfig returns mail defaults with delivery disabled
func DefaultMailConfig() *MailConfig {
	return &MailConfig{
		Enabled:     false,
		SMTPHost:    "localhost",
		SMTPPort:    25,
		FromAddress: "nyx@localhost",
		FromName:    "Nyx Night Tracker",
		UseSTARTTLS: true,
	}
}

// Mailer delivers rendered reports over SMTP
type Mailer struct {
	config *MailConfig
	logger *log.Logger
}

// NewMailer creates a new mailer
func NewMailer(cfg *MailConfig) *Mailer {
	if cfg == nil {
		cfg = DefaultMailConfig()
	}
	return &Mailer{
		config: cfg,
		logger: log.New(log.Writer(), "[mail] ", log.LstdFlags),
	}
}

// IsEnabled returns whether report delivery is configured
func (ml *Mailer) IsEnabled() bool {
	return ml.config.Enabled && len(ml.config.Recipients) > 0
}

// SendReport delivers a rendered report to the configured recipients
func (ml *Mailer) SendReport(rep *Report) error {
	return ml.SendReportTo(rep, ml.config.Recipients)
}

// SendReportTo delivers a rendered report to an explicit recipient list
func (ml *Mailer) SendReportTo(rep *Report, recipients []string) error {
	if !ml.config.Enabled {
		return fmt.Errorf("email is not enabled")
	}

	if len(recipients) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	const boundary = "nyx-report-part"

	// Build email headers
	headers := make(map[string]string)
	headers["From"] = ml.formatAddress(ml.config.FromName, ml.config.FromAddress)
	headers["To"] = strings.Join(recipients, ", ")
	headers["Subject"] = ml.encodeHeader(rep.Subject)
	headers["Date"] = time.Now().Format(time.RFC1123Z)
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%q", boundary)

	// Build raw message with plain and HTML alternatives
	var rawMsg strings.Builder
	for k, v := range headers {
		rawMsg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	rawMsg.WriteString("\r\n")

	writePart(&rawMsg, boundary, "text/plain", rep.Text)
	writePart(&rawMsg, boundary, "text/html", rep.HTML)
	rawMsg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := ml.sendMail(recipients, []byte(rawMsg.String())); err != nil {
		return err
	}

	ml.logger.Printf("delivered %q to %d recipient(s)", rep.Subject, len(recipients))
	return nil
}

// writePart appends one MIME body part, base64-encoded
func writePart(b *strings.Builder, boundary, contentType, body string) {
	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=UTF-8\r\n", contentType))
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(body)))
	b.WriteString("\r\n")
}

// sendMail sends the raw email
func (ml *Mailer) sendMail(recipients []string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", ml.config.SMTPHost, ml.config.SMTPPort)

	var conn net.Conn
	var err error

	if ml.config.UseTLS {
		// Direct TLS connection
		tlsConfig := &tls.Config{
			ServerName: ml.config.SMTPHost,
		}
		conn, err = tls.Dial("tcp", addr, tlsConfig)
	} else {
		conn, err = net.DialTimeout("tcp", addr, 30*time.Second)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, ml.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	// STARTTLS if enabled and not already using TLS
	if ml.config.UseSTARTTLS && !ml.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{
				ServerName: ml.config.SMTPHost,
			}
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	// Authenticate if credentials provided
	if ml.config.Username != "" && ml.config.Password != "" {
		auth := smtp.PlainAuth("", ml.config.Username, ml.config.Password, ml.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	// Set sender
	if err := client.Mail(ml.config.FromAddress); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	// Set recipients
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	// Send message
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err := writer.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// formatAddress formats an email address with display name
func (ml *Mailer) formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", ml.encodeHeader(name), address)
}

// encodeHeader encodes a header value for UTF-8
func (ml *Mailer) encodeHeader(value string) string {
	needsEncoding := false
	for _, r := range value {
		if r > 127 {
			needsEncoding = true
			break
		}
	}

	if !needsEncoding {
		return value
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(value))
	return fmt.Sprintf("=?UTF-8?B?%s?=", encoded)
}
