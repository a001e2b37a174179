// Package tokens verifies bearer access tokens issued by the identity
// provider and derives a request-scoped Principal from their claims.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videoauth/auth-service/internal/keycache"
)

// Verification failures, from structural to policy order.
var (
	ErrMissingToken  = errors.New("tokens: no token provided")
	ErrMalformed     = errors.New("tokens: malformed token")
	ErrUnknownKey    = errors.New("tokens: signing key not found")
	ErrBadSignature  = errors.New("tokens: signature mismatch")
	ErrExpired       = errors.New("tokens: token expired")
	ErrWrongTokenUse = errors.New("tokens: token_use is not access")
	ErrWrongAudience = errors.New("tokens: client id mismatch")
	ErrWrongIssuer   = errors.New("tokens: issuer mismatch")
)

// Verifier validates access tokens against the cached signing key set and
// the configured issuer/client policy. Verification performs no network
// I/O beyond the key cache's bounded refresh path.
type Verifier struct {
	keys     *keycache.Cache
	issuer   string
	clientID string
	now      func() time.Time
}

// NewVerifier creates a verifier for tokens issued by the given issuer to
// the given client.
func NewVerifier(keys *keycache.Cache, issuer, clientID string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, clientID: clientID, now: time.Now}
}

// WithClock overrides the verifier's time source. Intended for tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Verify checks the raw token structurally, cryptographically and against
// claim policy, returning the Principal it carries.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrUnknownKey)
		}
		key, err := v.keys.Key(ctx, kid)
		if err != nil {
			if errors.Is(err, keycache.ErrKeyNotFound) {
				return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
			}
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKey):
			return nil, err
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	return v.checkClaims(claims)
}

// checkClaims enforces claim policy: expiry, token_use, client id, issuer.
func (v *Verifier) checkClaims(claims jwt.MapClaims) (*Principal, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrMalformed
	}
	if exp.Before(v.now()) {
		return nil, ErrExpired
	}

	use, _ := claims["token_use"].(string)
	if use != "access" {
		return nil, ErrWrongTokenUse
	}

	// Cognito access tokens carry the client in client_id; id tokens use aud.
	clientID, _ := claims["client_id"].(string)
	if clientID == "" {
		if auds, err := claims.GetAudience(); err == nil && len(auds) > 0 {
			clientID = auds[0]
		}
	}
	if clientID != v.clientID {
		return nil, ErrWrongAudience
	}

	if v.issuer != "" {
		iss, err := claims.GetIssuer()
		if err != nil || iss != v.issuer {
			return nil, ErrWrongIssuer
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrMalformed
	}

	p := &Principal{
		Subject:   sub,
		ClientID:  clientID,
		TokenUse:  use,
		ExpiresAt: exp.Time,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		p.IssuedAt = iat.Time
	}
	return p, nil
}
