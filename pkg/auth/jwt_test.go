package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func claimsFor(sub string, exp time.Time) Claims {
	return Claims{
		UserID: sub,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "raven",
			Audience:  jwt.ClaimStrings{"raven-api"},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{SecretKey: secret, Issuer: "raven", Audience: []string{"raven-api"}})
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)

	wrongIssuer := claimsFor("user-1", future)
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid bearer token", token: "Bearer " + sign(t, secret, jwt.SigningMethodHS256, claimsFor("user-1", future))},
		{name: "missing", token: "Bearer ", wantErr: ErrMissingToken},
		{name: "expired", token: sign(t, secret, jwt.SigningMethodHS256, claimsFor("user-1", time.Now().Add(-time.Hour))), wantErr: ErrExpiredToken},
		{name: "wrong key", token: sign(t, "other", jwt.SigningMethodHS256, claimsFor("user-1", future)), wantErr: ErrInvalidSignature},
		{name: "wrong method", token: sign(t, secret, jwt.SigningMethodHS512, claimsFor("user-1", future)), wantErr: ErrInvalidSignature},
		{name: "wrong issuer", token: sign(t, secret, jwt.SigningMethodHS256, wrongIssuer), wantErr: ErrInvalidClaims},
		{name: "no subject", token: sign(t, secret, jwt.SigningMethodHS256, claimsFor("", future)), wantErr: ErrInvalidClaims},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.ValidateToken(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID)
		})
	}
}

func TestClaimsContext(t *testing.T) {
	ctx := ContextWithClaims(context.Background(), &Claims{UserID: "u"})

	claims, ok := ClaimsFromContext(ctx)

	require.True(t, ok)
	assert.Equal(t, "u", claims.UserID)

	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
