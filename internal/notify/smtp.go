package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// tlsTransport speaks SMTP over an implicit TLS connection (port 465)
type tlsTransport struct {
	cfg Config
}

func (t *tlsTransport) Name() string { return "smtps" }

func (t *tlsTransport) Send(msg Message) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.TLSPort))
	dialer := &net.Dialer{Timeout: t.cfg.Timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: t.cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()
	return deliver(client, t.cfg, msg)
}

// startTLSTransport opens a plain connection (port 587) and upgrades the
// session with STARTTLS before authenticating
type startTLSTransport struct {
	cfg Config
}

func (t *startTLSTransport) Name() string { return "smtp+starttls" }

func (t *startTLSTransport) Send(msg Message) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.StartTLSPort))
	conn, err := (&net.Dialer{Timeout: t.cfg.Timeout}).Dial("tcp", addr)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()
	if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
		return err
	}
	return deliver(client, t.cfg, msg)
}

func deliver(client *smtp.Client, cfg Config, msg Message) error {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		msg.From, msg.To, msg.Subject, msg.Body)
	if _, err := w.Write([]byte(payload)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
