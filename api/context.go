package api

import (
	"context"

	"github.com/rpupo63/portfolio-backend/services"
)

type keyType string

const (
	identityKey   keyType = "identity"
	sessionErrKey keyType = "sessionError"
)

// ctxWithIdentity adds the caller's identity to the context
func ctxWithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity returns the caller, or nil for an anonymous request
func ctxGetIdentity(ctx context.Context) *services.Identity {
	identity, _ := ctx.Value(identityKey).(*services.Identity)
	return identity
}

// ctxWithSessionError records why a presented session token was rejected
func ctxWithSessionError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, sessionErrKey, err)
}

func ctxGetSessionError(ctx context.Context) error {
	err, _ := ctx.Value(sessionErrKey).(error)
	return err
}
