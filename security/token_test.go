package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bawabt.com/labour/core"
)

var testUser = core.User{
	ID:    "usr_1",
	Email: "mel@example.com",
	Name:  "Mel",
	Role:  core.RoleManager,
}

func TestCreateAndParseUserToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := CreateUserToken(testUser, secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseUserToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Identity.ID)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, testUser.Name, claims.Name)
	assert.Equal(t, core.RoleManager, claims.Role)
	assert.Equal(t, "labour-api", claims.Issuer)
}

func TestParseUserTokenWrongSecret(t *testing.T) {
	token, err := CreateUserToken(testUser, []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseUserToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestParseUserTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := CreateUserToken(testUser, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseUserToken(token, secret)
	assert.Error(t, err)
}

func TestParseUserTokenGarbage(t *testing.T) {
	_, err := ParseUserToken("not-a-token", []byte("test-secret"))
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22hunter22"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}
