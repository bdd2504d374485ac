package http

import (
	"context"
	"errors"
	"fmt"

	"gramseva/internal/identity"
	"gramseva/internal/platform/middleware"
	"gramseva/internal/token"
	"gramseva/pkg/platform/sentinel"
)

// SessionValidator checks bearer tokens for the auth middleware: the JWT must
// verify and the session it names must still exist in the store. Logout
// deletes the session record, so a revoked token fails here before its JWT
// expiry. When the session store is unreachable the JWT alone is accepted,
// matching the degraded mode under which the session record may never have
// been written.
type SessionValidator struct {
	tokens   *token.Service
	sessions identity.SessionStore
}

func NewSessionValidator(tokens *token.Service, sessions identity.SessionStore) *SessionValidator {
	return &SessionValidator{tokens: tokens, sessions: sessions}
}

func (v *SessionValidator) ValidateToken(ctx context.Context, raw string) (*middleware.TokenClaims, error) {
	claims, err := v.tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}

	if _, err := v.sessions.FindByID(ctx, claims.SessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("session %s revoked", claims.SessionID)
		}
		// Store unreachable; fall through on the verified JWT.
	}

	return &middleware.TokenClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
	}, nil
}
