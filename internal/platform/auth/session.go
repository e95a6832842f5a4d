package auth

import "context"

// Session is the per-request identity payload extracted from a verified
// token: who the user is, what role they hold, and whether the account is
// still enabled. Name and Email mirror the provider profile so the first
// request can create the matching account.
type Session struct {
	UserID   string
	Name     string
	Email    string
	Role     string
	IsActive bool
}

// Clinic roles. An admin passes every role check.
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleDispenser = "dispenser"
)

type contextKey string

const sessionKey contextKey = "session"

func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by the gate middleware.
// The zero Session (empty user id) means the request was not authenticated.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey).(Session)
	return s
}

func UserIDFromContext(ctx context.Context) string {
	return SessionFromContext(ctx).UserID
}

func RoleFromContext(ctx context.Context) string {
	return SessionFromContext(ctx).Role
}
