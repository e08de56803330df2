package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks HS256 access tokens signed with the secret shared with
// the identity provider. The subject claim carries the user id (hex).
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier returns a verifier for secret. When issuer is non-empty
// tokens must carry a matching iss claim.
func NewTokenVerifier(secret, issuer string) (*TokenVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// Claims are the access token claims the service reads. Email and Name are
// optional and used only when provisioning a first-time user.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verify validates raw and returns its subject.
func (v *TokenVerifier) Verify(raw string) (string, error) {
	c, err := v.Parse(raw)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// Parse validates raw and returns its claims.
func (v *TokenVerifier) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("verify token: missing subject")
	}
	return &claims, nil
}

// Issue signs a token for subject valid for ttl. Used by tooling and tests;
// production tokens come from the identity provider.
func (v *TokenVerifier) Issue(subject string, ttl time.Duration) (string, error) {
	return v.IssueClaims(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}, ttl)
}

// IssueClaims signs c, stamping issuer, issued-at and expiry.
func (v *TokenVerifier) IssueClaims(c Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	c.Issuer = v.issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}
