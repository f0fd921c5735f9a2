// ABOUTME: Session context for tracking identity through request handlers
// ABOUTME: Provides WithSession/FromContext for propagating auth info via context

package auth

import (
	"context"
)

// Session holds the authenticated identity information extracted from a
// request. This is populated by the middleware and can be retrieved from
// context in handlers. Identity doubles as the partition key for the
// caller's notes and vault entries; Token is kept so logout can revoke the
// exact credential that was presented.
type Session struct {
	Identity string
	Token    string
}

// sessionContextKey is the key type for storing a Session in context.Context.
type sessionContextKey struct{}

// WithSession returns a new context with the Session attached.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// FromContext retrieves the Session from the context, returning nil if not present.
func FromContext(ctx context.Context) *Session {
	val := ctx.Value(sessionContextKey{})
	if val == nil {
		return nil
	}
	sess, ok := val.(*Session)
	if !ok {
		return nil
	}
	return sess
}

// MustFromContext retrieves the Session from the context, panicking if not
// present. Only for handlers that are always behind the middleware.
func MustFromContext(ctx context.Context) *Session {
	sess := FromContext(ctx)
	if sess == nil {
		panic("auth: Session not found in context")
	}
	return sess
}
