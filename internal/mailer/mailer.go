package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// Mailer entrega el correo con el magic link. La entrega real es un
// colaborador externo: el servicio solo conoce esta interfaz.
type Mailer interface {
	SendMagicLink(to, link string) error
}

// ============================================================================
// SMTP MAILER - entrega real vía servidor SMTP configurado por env vars
// ============================================================================

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewFromEnv construye el mailer según las variables de entorno.
// Sin SMTP_HOST configurado retorna el LogMailer (modo desarrollo).
func NewFromEnv() Mailer {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		log.Println("⚠️ SMTP_HOST no configurado, usando LogMailer (solo desarrollo)")
		return &LogMailer{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@identgate.local"
	}
	return &SMTPMailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

func (m *SMTPMailer) SendMagicLink(to, link string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Tu enlace de acceso\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Hola!\r\n\r\nUsa este enlace para iniciar sesión (válido por 15 minutos):\r\n\r\n%s\r\n\r\n"+
			"Si no solicitaste este correo puedes ignorarlo.\r\n",
		m.from, to, link,
	)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// ============================================================================
// LOG MAILER - modo desarrollo: imprime el enlace en el log del servidor
// ============================================================================

type LogMailer struct{}

func (m *LogMailer) SendMagicLink(to, link string) error {
	log.Printf("📨 [DEV-MAILER] magic link para %s: %s", to, link)
	return nil
}
