// Package token issues and validates the HS256 bearer tokens that carry a
// session reference. The token is only a pointer: authorization always goes
// back to the session store, so revocation wins over an unexpired token.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Claims are the JWT claims for login tokens.
type Claims struct {
	AccountID string `json:"account_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Issuer creates and validates signed tokens.
type Issuer struct {
	signingKey []byte
	issuer     string
}

func NewIssuer(signingKey, issuer string) *Issuer {
	return &Issuer{signingKey: []byte(signingKey), issuer: issuer}
}

// Issue signs a token bound to the session, expiring with it.
func (i *Issuer) Issue(accountID id.AccountID, sessionID id.SessionID, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		AccountID: accountID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the session reference.
func (i *Issuer) Validate(tokenString string) (id.AccountID, id.SessionID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.AccountID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.AccountID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return id.AccountID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return id.AccountID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return id.AccountID{}, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return accountID, sessionID, nil
}
