package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(42)
	require.NoError(t, err)

	userID, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, 42, userID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ParseToken(tokenString)
		require.Error(t, err, "token %q", tokenString)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := NewToken(42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered)
	require.Error(t, err)
}
