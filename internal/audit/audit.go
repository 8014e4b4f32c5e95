// Package audit records security-relevant events (logins, logouts,
// registrations) on a dedicated logger so they can be routed separately.
package audit

import (
	"context"

	"github.com/dropDatabas3/hellologin/internal/observability/logger"
)

// Event names.
const (
	EventLogin    = "login"
	EventLogout   = "logout"
	EventRegister = "register"
)

// Log writes one audit entry. The request-scoped fields (request id, path)
// come from the context logger.
func Log(ctx context.Context, event string, fields ...logger.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, logger.String("event", event))...)
}
