package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	branchID := int64(2)

	token, expiresAt, err := svc.GenerateAccessToken(GenerateTokenInput{
		UserID:   userID,
		Username: "cashier.harbor",
		Role:     ledger.RoleCashier,
		BranchID: &branchID,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "cashier.harbor", claims.Username)
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)

	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, userID, caller.UserID)
	assert.Equal(t, ledger.RoleCashier, caller.Role)
	require.NotNil(t, caller.BranchID)
	assert.Equal(t, int64(2), *caller.BranchID)
}

func TestJWTService_HeadOfficeCaller(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Role: ledger.RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.False(t, caller.HasBranch())
	assert.True(t, caller.Role.IsBranchExempt())
}

func TestJWTService_ValidateAccessToken_Rejections(t *testing.T) {
	svc := newTestJWTService()

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", AccessTokenExpiration: time.Minute, Issuer: "test-issuer"})
		token, _, err := other.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Role: ledger.RoleClerk})
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: -time.Minute, Issuer: "test-issuer"})
		token, _, err := expired.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Role: ledger.RoleClerk})
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "someone-else"})
		token, _, err := foreign.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Role: ledger.RoleClerk})
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString(), Role: "ADMIN"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Caller(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{"bad user id", Claims{UserID: "nope", Role: "ADMIN"}, ErrInvalidClaims},
		{"unknown role", Claims{UserID: uuid.NewString(), Role: "JANITOR"}, ErrUnknownRole},
		{"lower case role", Claims{UserID: uuid.NewString(), Role: "branch_manager"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.claims.Caller()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	zero := int64(0)
	caller, err := (&Claims{UserID: uuid.NewString(), Role: "CLERK", BranchID: &zero}).Caller()
	require.NoError(t, err)
	assert.Nil(t, caller.BranchID)
}
