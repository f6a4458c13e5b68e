package auth

import (
	"chat-feed/errors"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyPasswordIsT0oStrong!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_Rejects_Malformed_Hash(t *testing.T) {
	req := require.New(t)
	for _, hash := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=x$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		_, err := ComparePassword("whatever", hash)
		req.Error(err, hash)
	}
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"test@example.com", "ComplexPass123!", "Test"}, nil},
		{"Invalid email", RegisterRequest{"notanemail", "ComplexPass123!", "Test"}, errors.ErrInvalidArgument},
		{"Missing name", RegisterRequest{"test@example.com", "ComplexPass123!", ""}, errors.ErrInvalidArgument},
		{"Password too short", RegisterRequest{"test@example.com", "Short1!", "Test"}, errors.ErrInvalidArgument},
		{"Missing digit", RegisterRequest{"test@example.com", "NoDigitPass!", "Test"}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"test@example.com", "NoSpecialChar123", "Test"}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"test@example.com", "nouppercase123!", "Test"}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"test@example.com", strings.Repeat("a", 73), "Test"}, errors.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenManager_Round_Trip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("a-test-secret-long-enough-for-hs256", time.Hour)

	token, err := tokens.GenerateToken("user-1", []string{"member"})
	req.NoError(err)

	claims, err := tokens.ValidateToken(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal([]string{"member"}, claims.Roles)
}

func TestTokenManager_Rejects_Foreign_And_Expired_Tokens(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("secret-one-secret-one-secret-one", time.Hour)
	other := NewTokenManager("secret-two-secret-two-secret-two", time.Hour)

	foreign, err := other.GenerateToken("user-1", nil)
	req.NoError(err)
	_, err = tokens.ValidateToken(foreign)
	req.ErrorIs(err, errors.ErrUnauthenticated)

	expired := NewTokenManager("secret-one-secret-one-secret-one", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := expired.GenerateToken("user-1", nil)
	req.NoError(err)
	_, err = tokens.ValidateToken(token)
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestIdentity_Context(t *testing.T) {
	req := require.New(t)

	_, ok := UserIDFromContext(context.Background())
	req.False(ok)

	ctx := WithIdentity(context.Background(), "user-1", []string{"admin"})
	userID, ok := UserIDFromContext(ctx)
	req.True(ok)
	req.Equal("user-1", string(userID))
	req.Equal([]string{"admin"}, RolesFromContext(ctx))
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
