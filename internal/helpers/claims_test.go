package helpers

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndValidateRoundTrip(t *testing.T) {
	token, err := SignToken("secret", "user-1", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.True(t, claims.IsOwner("user-1"))
	assert.False(t, claims.IsOwner("user-2"))
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignToken("secret", "user-1", "user")
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("secret", "not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1", Role: "admin"})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken("secret", tokenStr)
	assert.Error(t, err)
}

func TestIsPasswordStrong(t *testing.T) {
	assert.True(t, IsPasswordStrong("Sup3rSecret"))
	assert.False(t, IsPasswordStrong("short1A"))
	assert.False(t, IsPasswordStrong("nouppercase1"))
	assert.False(t, IsPasswordStrong("NOLOWERCASE1"))
	assert.False(t, IsPasswordStrong("NoNumbersAtAll"))
}

func TestGenerateTokenIsUniqueHex(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestRemoveDuplicatesPreservesOrder(t *testing.T) {
	got := RemoveDuplicates([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
