package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/minwonhaeso/esc-server/internal/config"
)

func TestSMTPMailerBuildsHTMLMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPSettings{Host: "smtp.esc.dev", Port: 587, Username: "mailer", Password: "secret", From: "no-reply@esc.dev"})
	var raw bytes.Buffer
	var rcpts []string
	m.send = func(_ context.Context, msg *gomail.Msg) error {
		var err error
		if rcpts, err = msg.GetRecipients(); err != nil {
			return err
		}
		_, err = msg.WriteTo(&raw)
		return err
	}

	err := m.Send(context.Background(), Mail{
		To:       "kim@esc.dev",
		Subject:  "[ESC] 이메일 인증 안내",
		HTMLBody: "<p>code abc123</p>",
		Purpose:  "signup",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(rcpts) != 1 || rcpts[0] != "kim@esc.dev" {
		t.Fatalf("unexpected recipients %v", rcpts)
	}
	for _, want := range []string{
		"no-reply@esc.dev",
		"text/html; charset=UTF-8",
		"Subject: =?UTF-8?",
		"abc123",
	} {
		if !strings.Contains(raw.String(), want) {
			t.Fatalf("expected %q in message:\n%s", want, raw.String())
		}
	}
}

func TestSMTPMailerBoundsDeliveryWithTimeout(t *testing.T) {
	m := NewSMTPMailer(SMTPSettings{Host: "smtp.esc.dev", Port: 25, From: "no-reply@esc.dev", Timeout: 2 * time.Second})
	m.send = func(ctx context.Context, _ *gomail.Msg) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("delivery must run under a deadline")
		}
		if left := time.Until(deadline); left <= 0 || left > 2*time.Second {
			t.Fatalf("unexpected deadline in %s", left)
		}
		return nil
	}
	if err := m.Send(context.Background(), Mail{To: "kim@esc.dev"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := NewSMTPMailer(SMTPSettings{Host: "h", Port: 25}).settings.Timeout; got != defaultSMTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultSMTPTimeout, got)
	}
}

func TestSMTPMailerWrapsTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	m := NewSMTPMailer(SMTPSettings{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port, From: "no-reply@esc.dev", Timeout: time.Second})
	err = m.Send(context.Background(), Mail{To: "kim@esc.dev", Subject: "hi", HTMLBody: "<p>hi</p>"})
	if err == nil || !strings.Contains(err.Error(), "send mail via 127.0.0.1") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestSMTPMailerRejectsBadAddress(t *testing.T) {
	m := NewSMTPMailer(SMTPSettings{Host: "smtp.esc.dev", Port: 25, From: "no-reply@esc.dev"})
	m.send = func(context.Context, *gomail.Msg) error {
		t.Fatal("send must not be attempted")
		return nil
	}
	if err := m.Send(context.Background(), Mail{To: "not an address"}); err == nil {
		t.Fatal("expected recipient error")
	}
}

func TestSMTPMailerHonoursCanceledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPSettings{Host: "smtp.esc.dev", Port: 25, From: "no-reply@esc.dev"})
	m.send = func(context.Context, *gomail.Msg) error {
		t.Fatal("send must not be attempted")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, Mail{To: "kim@esc.dev"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewMailerSelectsDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, ok := NewMailer(&config.Config{MailDriver: "log"}, logger).(*LogMailer); !ok {
		t.Fatal("expected log mailer")
	}
	smtpMailer, ok := NewMailer(&config.Config{MailDriver: "SMTP", SMTPHost: "h", SMTPPort: 25, SMTPTimeout: 3 * time.Second}, logger).(*SMTPMailer)
	if !ok {
		t.Fatal("expected smtp mailer")
	}
	if smtpMailer.settings.Timeout != 3*time.Second {
		t.Fatalf("expected configured timeout, got %s", smtpMailer.settings.Timeout)
	}
	if err := NewLogMailer(logger).Send(context.Background(), Mail{To: "kim@esc.dev"}); err != nil {
		t.Fatalf("log mailer: %v", err)
	}
}
