package observability

import (
	"log/slog"
	"testing"
)

func TestRedactAttrMasksCredentials(t *testing.T) {
	for _, key := range []string{"password", "Authorization", "refresh_token", "access_token"} {
		got := redactAttr(nil, slog.String(key, "secret-value"))
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected %s to be redacted, got %q", key, got.Value.String())
		}
	}
	kept := redactAttr(nil, slog.String("email", "member@example.com"))
	if kept.Value.String() != "member@example.com" {
		t.Fatalf("expected email to pass through, got %q", kept.Value.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v want %v", in, got, want)
		}
	}
}
