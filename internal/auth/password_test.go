package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"), "digest should name its algorithm: %s", digest)

	assert.True(t, h.Verify("Str0ng!Pass", digest))
	assert.False(t, h.Verify("Str0ng!Pas", digest))
	assert.False(t, h.Verify("", digest))
	assert.False(t, h.Verify("Str0ng!Pass", "not-a-digest"))
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestNewHasherCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"min", bcrypt.MinCost, bcrypt.MinCost},
		{"too low", 1, bcrypt.DefaultCost},
		{"too high", bcrypt.MaxCost + 1, bcrypt.DefaultCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == bcrypt.DefaultCost && testing.Short() {
				t.Skip("default cost is slow")
			}
			assert.Equal(t, tt.want, NewHasher(tt.cost).Cost())
		})
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}
