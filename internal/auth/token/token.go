// Package token issues and verifies the signed, expiring claim sets that
// carry caller identity between requests. Tokens are stateless: there is no
// server-side session and no revocation beyond natural expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhq/task-manager-api/internal/auth"
)

// Kind distinguishes short-lived access tokens from long-lived refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the typed claim set embedded in every issued token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Kind     Kind   `json:"type"`
}

// Identity projects the claims onto the request-scoped caller identity.
func (c *Claims) Identity() auth.Identity {
	return auth.Identity{
		ID:       c.Subject,
		Username: c.Username,
		Email:    c.Email,
		Role:     auth.Role(c.Role),
	}
}

// Config is the immutable signing configuration, established once at startup.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies tokens with HS256 over a symmetric secret.
type Codec struct {
	cfg Config
	now func() time.Time
}

// NewCodec creates a Codec. Zero TTLs fall back to 24h (access) and
// 7d (refresh).
func NewCodec(cfg Config) *Codec {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &Codec{cfg: cfg, now: time.Now}
}

// Issue signs a token of the given kind for the identity. Expiry is
// now + AccessTTL or now + RefreshTTL depending on kind.
func (c *Codec) Issue(ident auth.Identity, kind Kind) (string, error) {
	ttl := c.cfg.AccessTTL
	if kind == KindRefresh {
		ttl = c.cfg.RefreshTTL
	}

	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: ident.Username,
		Email:    ident.Email,
		Role:     string(ident.Role),
		Kind:     kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return "", &auth.AuthnError{Kind: auth.AuthnOther, Message: "sign token: " + err.Error()}
	}
	return signed, nil
}

// Verify parses and validates a token string, checking signature, expiry,
// issuer, and audience. It fails closed with a classified AuthnError.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(c.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, &auth.AuthnError{Kind: auth.AuthnMalformed, Message: "invalid token"}
	}
	return claims, nil
}

// classify maps golang-jwt validation errors onto the authentication taxonomy.
// A right-key/wrong-issuer (or audience) token is malformed, not "other":
// it was not issued for this service.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &auth.AuthnError{Kind: auth.AuthnExpired, Message: "token expired"}
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &auth.AuthnError{Kind: auth.AuthnMalformed, Message: "invalid token"}
	default:
		return &auth.AuthnError{Kind: auth.AuthnOther, Message: "verify token: " + err.Error()}
	}
}
