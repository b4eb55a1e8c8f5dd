package audit

import (
	"context"
	"errors"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/ids"
	"shopadmin.org/internal/obs"
)

// Audit event names.
const (
	EventLoginSucceeded = "auth.login.succeeded"
	EventLoginFailed    = "auth.login.failed"
	EventLogout         = "auth.logout"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// logging outside of an HTTP request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return chimw.GetReqID(ctx)
}

// LogEvent writes an audit entry enriched with request and employee context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := []zap.Field{
		zap.String("type", "audit"),
		zap.String("event", event),
		zap.String("event_id", ids.New()),
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry = append(entry, zap.String("request_id", rid))
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		entry = append(entry, zap.Int64("employee_id", p.ID()))
	}
	copyFields := make(map[string]any, len(fields))
	for k, v := range fields {
		copyFields[k] = v
	}
	entry = append(entry, zap.Any("fields", copyFields))

	obs.L(ctx).Info("audit", entry...)
	return nil
}

// LoginOutcome records a login attempt. It matches auth.OutcomeFunc.
func LoginOutcome(ctx context.Context, outcome, username string) {
	event := EventLoginFailed
	fields := map[string]any{"username": username}
	if outcome == auth.OutcomeSuccess {
		event = EventLoginSucceeded
	} else {
		fields["reason"] = outcome
	}
	_ = LogEvent(ctx, event, fields)
}
