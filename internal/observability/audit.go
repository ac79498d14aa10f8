package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const auditEventVersion = 1

type AuditInput struct {
	EventName  string
	ActorEmail string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	ActorEmail   string `json:"actor_email"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TS           string `json:"ts"`
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	return AuditEvent{
		EventVersion: auditEventVersion,
		EventName:    in.EventName,
		ActorEmail:   in.ActorEmail,
		ActorIP:      remoteIP(r),
		TargetType:   in.TargetType,
		TargetID:     in.TargetID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       in.Reason,
		RequestID:    r.Header.Get("X-Request-Id"),
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

func (e AuditEvent) Validate() error {
	var missing []string
	if e.EventVersion <= 0 {
		missing = append(missing, "event_version")
	}
	if strings.TrimSpace(e.EventName) == "" {
		missing = append(missing, "event_name")
	}
	if strings.TrimSpace(e.Action) == "" {
		missing = append(missing, "action")
	}
	if strings.TrimSpace(e.Outcome) == "" {
		missing = append(missing, "outcome")
	}
	if strings.TrimSpace(e.TS) == "" {
		missing = append(missing, "ts")
	}
	if len(missing) > 0 {
		return errors.New("audit event missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// EmitAudit logs a structured audit event; events failing validation are
// logged at warn level instead of being dropped.
func EmitAudit(r *http.Request, in AuditInput) {
	ev := BuildAuditEvent(r, in)
	level := slog.LevelInfo
	attrs := []any{
		"event", ev.EventName,
		"event_version", ev.EventVersion,
		"actor_email", ev.ActorEmail,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
	}
	if err := ev.Validate(); err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, "validation_error", err.Error())
	}
	slog.Log(r.Context(), level, auditMessage(r), attrs...)
}

func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Header.Get("X-Request-Id"),
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), auditMessage(r), base...)
}

func auditMessage(r *http.Request) string {
	sc := trace.SpanContextFromContext(r.Context())
	if sc.IsValid() {
		return fmt.Sprintf("audit trace_id=%s span_id=%s", sc.TraceID().String(), sc.SpanID().String())
	}
	return "audit"
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
