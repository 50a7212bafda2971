package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/psfhyd/memberportal/internal/pkg/env"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims are the identity-provider claims this backend consumes. Subject is
// the stable external identity key stored on the local user row.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// NewVerifierFromEnv builds a verifier from AUTH_* environment settings.
func NewVerifierFromEnv() *Verifier {
	return &Verifier{
		Secret:   env.GetEnv("AUTH_TOKEN_SECRET", ""),
		Issuer:   env.GetEnv("AUTH_ISSUER", ""),
		Audience: env.GetEnv("AUTH_AUDIENCE", ""),
		Leeway:   30 * time.Second,
	}
}

// Verify parses and validates a raw bearer token and returns the claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}
	if v.Secret == "" {
		return nil, errors.New("AUTH_TOKEN_SECRET is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.Leeway),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	email, _ := mc["email"].(string)
	name, _ := mc["name"].(string)

	return &Claims{
		Subject: sub,
		Email:   email,
		Name:    name,
	}, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
