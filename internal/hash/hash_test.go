package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.NotEqual(t, "Passw0rd!", h)

	require.True(t, CheckPassword(h, "Passw0rd!"))
	require.False(t, CheckPassword(h, "wrong"))
	require.False(t, CheckPassword("", "Passw0rd!"))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	b, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
