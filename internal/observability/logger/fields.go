package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is a zap field, re-exported so callers need not import zap.
type Field = zap.Field

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// AUTH
// =================================================================================

// UserID is the store id of the authenticated user.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email should only be logged at debug level.
func Email(v string) zap.Field { return zap.String("email", v) }

// Strategy is the strategy name, e.g. "twitter-login".
func Strategy(v string) zap.Field { return zap.String("strategy", v) }

// Provider is the provider slug, e.g. "google".
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Outcome is "authenticated", "rejected" or "fault".
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

func Reason(v string) zap.Field { return zap.String("reason", v) }

// =================================================================================
// SYSTEM
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
