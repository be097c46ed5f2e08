package auth

import (
	"strings"

	"ctchen222/portfolio-tracker/internal/apperr"
)

// ErrForbidden is returned when a valid token belongs to another user.
var ErrForbidden = apperr.Unauthorized("unauthorized access")

// TokenVerifier resolves a token to the user it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Identity is a caller proven to own the requested resource.
type Identity struct {
	UserID int64
}

// Gate combines token verification with the ownership check.
type Gate struct {
	tokens TokenVerifier
}

// NewGate creates a Gate verifying tokens with tokens.
func NewGate(tokens TokenVerifier) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate verifies token alone. A missing or invalid token yields a
// KindUnauthenticated error.
func (g *Gate) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	userID, err := g.tokens.Verify(token)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnauthenticated {
			return Identity{}, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken.Message, err)
		}
		return Identity{}, err
	}
	return Identity{UserID: userID}, nil
}

// Authorize verifies token and requires it to belong to ownerID. A token
// for another user yields KindUnauthorized, which is distinct from a
// missing or invalid token.
func (g *Gate) Authorize(token string, ownerID int64) (Identity, error) {
	id, err := g.Authenticate(token)
	if err != nil {
		return Identity{}, err
	}
	if id.UserID != ownerID {
		return Identity{}, ErrForbidden
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". Any other form yields "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
