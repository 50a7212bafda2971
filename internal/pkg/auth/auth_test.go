package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func newVerifier() *Verifier {
	return &Verifier{
		Secret:   testSecret,
		Issuer:   "https://auth.example.org/",
		Audience: "memberportal-api",
		Leeway:   30 * time.Second,
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "auth0|user123",
		"email": "asha@example.org",
		"name":  "Asha",
		"iss":   "https://auth.example.org/",
		"aud":   "memberportal-api",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v := newVerifier()
	raw := signToken(t, testSecret, baseClaims())

	claims, err := v.Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, "auth0|user123", claims.Subject)
	assert.Equal(t, "asha@example.org", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
}

func TestVerify_EmptyToken(t *testing.T) {
	v := newVerifier()

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.Verify("   ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := newVerifier()
	raw := signToken(t, "other-secret", baseClaims())

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	v := newVerifier()
	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	raw := signToken(t, testSecret, claims)

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiration(t *testing.T) {
	v := newVerifier()
	claims := baseClaims()
	delete(claims, "exp")
	raw := signToken(t, testSecret, claims)

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAudience(t *testing.T) {
	v := newVerifier()
	claims := baseClaims()
	claims["aud"] = "another-api"
	raw := signToken(t, testSecret, claims)

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	v := newVerifier()
	claims := baseClaims()
	claims["iss"] = "https://evil.example.org/"
	raw := signToken(t, testSecret, claims)

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingSubject(t *testing.T) {
	v := newVerifier()
	claims := baseClaims()
	delete(claims, "sub")
	raw := signToken(t, testSecret, claims)

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	v := newVerifier()

	_, err := v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc123", ExtractBearer("Bearer abc123"))
	assert.Equal(t, "abc123", ExtractBearer("bearer abc123"))
	assert.Equal(t, "abc123", ExtractBearer("  Bearer   abc123  "))
	assert.Equal(t, "", ExtractBearer("Basic abc123"))
	assert.Equal(t, "", ExtractBearer("abc123"))
	assert.Equal(t, "", ExtractBearer(""))
}
