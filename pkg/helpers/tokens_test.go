package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestGenTokenUnique(t *testing.T) {
	a, err := GenToken(32)
	require.NoError(t, err)
	b, err := GenToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("S3cret!pass")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "S3cret!pass"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
	assert.False(t, PasswordNeedsRehash(hash))

	weak, err := bcrypt.GenerateFromPassword([]byte("S3cret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, PasswordNeedsRehash(string(weak)))
	assert.False(t, PasswordNeedsRehash("not-a-hash"))
}
