package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templates embed.FS

const activationSubject = "Activate Your Account"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From address, defaults to Username
	From string
}

// SMTPSender renders the activation mail from the embedded template and
// ships it over plain SMTP
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host must not be empty")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error while parsing mail templates. Err: %w", err)
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		tmpl:   tmpl,
	}, nil
}

func (s *SMTPSender) SendActivationCode(ctx context.Context, toEmail string, name string, code string) error {
	body := &bytes.Buffer{}
	err := s.tmpl.ExecuteTemplate(body, "activation_mail.html", struct {
		Name string
		Code string
	}{Name: name, Code: code})
	if err != nil {
		return fmt.Errorf("error while rendering activation mail. Err: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", activationSubject)
	m.SetBody("text/html", body.String())

	// gomail has no context support; honor cancellation around the dial
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error while sending activation mail. Err: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
