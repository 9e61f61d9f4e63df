package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token: invalid or expired")
	ErrSecretEmpty  = errors.New("token: signing secret is required")
)

const defaultTokenTTL = 24 * time.Hour

// Claims carries the client id as subject plus its roles.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 bearer tokens.
type JWTIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func NewJWTIssuer(secret, issuer string, ttl time.Duration) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretEmpty
	}
	return &JWTIssuer{Secret: []byte(secret), Issuer: issuer, TTL: ttl}, nil
}

func (j *JWTIssuer) Issue(subject string, roles []string) (string, time.Time, error) {
	if len(j.Secret) == 0 {
		return "", time.Time{}, ErrSecretEmpty
	}
	now := j.now()
	ttl := j.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	expires := now.Add(ttl)
	claims := Claims{
		Roles: append([]string(nil), roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature, expiry and issuer, and returns the subject and roles.
func (j *JWTIssuer) Parse(raw string) (string, []string, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", nil, ErrTokenInvalid
	}
	return claims.Subject, claims.Roles, nil
}

func (j *JWTIssuer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}
