package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"deseos/internal/config"
)

type IMailService interface {
	SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error
	SendMailToResetPassword(email, token string) error
}

type smtpMailService struct {
	cfg        config.SMTPConfig
	appName    string
	appBaseURL string
	htmlTpl    *template.Template
	textTpl    *texttemplate.Template
	dialer     *net.Dialer
}

// NewMailService returns the SMTP mailer, or a mailer that only logs when SMTP_FROM is not set.
func NewMailService(cfg *config.Config, log *zap.Logger) IMailService {
	if cfg.SMTP.From == "" || cfg.SMTP.Host == "" {
		log.Warn("SMTP not configured, emails will only be logged")
		return &logMailService{log: log.Named("mail")}
	}
	return &smtpMailService{
		cfg:        cfg.SMTP,
		appName:    cfg.SMTP.FromName,
		appBaseURL: cfg.AppBaseURL,
		htmlTpl:    template.Must(template.New("html").Parse(emailHTMLTemplate)),
		textTpl:    texttemplate.Must(texttemplate.New("text").Parse(emailTextTemplate)),
		dialer:     &net.Dialer{Timeout: 10 * time.Second},
	}
}

func (s *smtpMailService) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	return s.sendTemplate(to, EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
	})
}

func (s *smtpMailService) SendMailToResetPassword(to, token string) error {
	return s.sendTemplate(to, EmailData{
		Title:     "Restablece tu contraseña",
		Intro:     "Recibimos una solicitud para restablecer tu contraseña. El enlace vence en una hora. Si no fuiste tú, ignora este correo.",
		ButtonURL: resetLink(s.appBaseURL, token),
		ButtonTxt: "Restablecer contraseña",
	})
}

func resetLink(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

const emailHTMLTemplate = `<!doctype html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #fdf6f0; color: #3b2f2f; font-family: Helvetica, Arial, sans-serif; }
    .wrapper { padding: 32px 16px; }
    .card { max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden; border: 1px solid #f1e3d8; }
    .header { padding: 24px 28px; background: #e85d75; color: #ffffff; font-size: 20px; font-weight: 700; }
    .content { padding: 28px; }
    h1 { margin: 0 0 12px; font-size: 22px; }
    p { margin: 0 0 16px; line-height: 1.6; }
    .btn { display: inline-block; padding: 12px 24px; background: #e85d75; color: #ffffff !important; border-radius: 8px; text-decoration: none; font-weight: 600; }
    .muted { color: #8a7a74; font-size: 12px; word-break: break-all; }
    .footer { padding: 16px 28px; font-size: 12px; color: #8a7a74; text-align: center; background: #fbf3ee; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="card">
      <div class="header">{{.AppName}}</div>
      <div class="content">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{if .ButtonURL}}
        <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
        <p class="muted">Si el botón no funciona, copia este enlace en tu navegador:<br>{{.ButtonURL}}</p>
        {{end}}
      </div>
      <div class="footer">© {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const emailTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) sendTemplate(to string, data EmailData) error {
	data.AppName = s.appName
	data.Year = time.Now().Year()

	var hb, tb bytes.Buffer
	if err := s.htmlTpl.Execute(&hb, data); err != nil {
		return err
	}
	if err := s.textTpl.Execute(&tb, data); err != nil {
		return err
	}
	return s.send(to, data.Title, hb.String(), tb.String())
}

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.fromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\nContent-Type: text/plain; charset=UTF-8\r\nContent-Transfer-Encoding: 8bit\r\n\r\n%s\r\n\r\n", boundary, textBody)
	write("--%s\r\nContent-Type: text/html; charset=UTF-8\r\nContent-Transfer-Encoding: 8bit\r\n\r\n%s\r\n\r\n", boundary, htmlBody)
	write("--%s--\r\n", boundary)

	return msg.Bytes()
}

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.UseSSL {
		// SMTPS, usually port 465
		conn, err = tls.DialWithDialer(s.dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = s.dialer.Dial("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		ok, _ := c.Extension("STARTTLS")
		if !ok {
			return fmt.Errorf("smtp server %s does not support STARTTLS", s.cfg.Host)
		}
		if err = c.StartTLS(tlsCfg); err != nil {
			return err
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(s.buildMessage(to, subject, htmlBody, textBody)); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) fromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), s.cfg.From)
}

type logMailService struct {
	log *zap.Logger
}

func (l *logMailService) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	l.log.Info("email (not sent)", zap.String("to", to), zap.String("subject", subject), zap.String("link", ctaURL))
	return nil
}

func (l *logMailService) SendMailToResetPassword(email, token string) error {
	l.log.Info("password reset email (not sent)", zap.String("to", email))
	return nil
}
