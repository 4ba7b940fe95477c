package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec([]byte("test-secret"), 3600)
}

func TestIssueAndVerify(t *testing.T) {
	c := testCodec()

	raw, err := c.Issue(map[string]any{
		"user_id":  uint(42),
		"username": "alice",
		"role":     "admin",
	})
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims["user_id"])
	require.Equal(t, "alice", claims["username"])
	require.Equal(t, "admin", claims["role"])
	require.NotZero(t, claims["iat"])
	require.NotZero(t, claims["exp"])
}

func TestIssueDoesNotMutateClaims(t *testing.T) {
	c := testCodec()
	claims := map[string]any{"username": "alice"}

	_, err := c.Issue(claims)
	require.NoError(t, err)
	require.NotContains(t, claims, "exp")
	require.NotContains(t, claims, "iat")
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c := testCodec()

	raw, err := c.Issue(map[string]any{"username": "alice"})
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = c.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	c := testCodec()

	raw, err := c.Issue(map[string]any{"role": "user"})
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin"}`))

	_, err = c.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	c := testCodec()

	for _, raw := range []string{"", "abc", "a.b", "a.b.c.d", "!!!.???.###"} {
		_, err := c.Verify(raw)
		require.ErrorIs(t, err, ErrMalformedToken, "input %q", raw)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	c := testCodec()
	c.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	raw, err := c.IssueWithTTL(map[string]any{"username": "alice"}, -time.Minute)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := testCodec().Issue(map[string]any{"username": "alice"})
	require.NoError(t, err)

	other := NewCodec([]byte("other-secret"), 3600)
	_, err = other.Verify(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

// The header alg field is not inspected during verification; only the
// recomputed HMAC decides. A token declaring alg none but carrying a valid
// signature still verifies.
func TestVerifyIgnoresDeclaredAlg(t *testing.T) {
	c := testCodec()

	raw, err := c.Issue(map[string]any{"username": "alice"})
	require.NoError(t, err)
	parts := strings.Split(raw, ".")

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	sig := c.sign(header + "." + parts[1])
	forged := header + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(sig)

	claims, err := c.Verify(forged)
	require.NoError(t, err)
	require.Equal(t, "alice", claims["username"])
}

func TestCSRFIssueAndValidate(t *testing.T) {
	i := NewCSRFIssuer(3600)

	entry := i.Issue()
	require.Len(t, entry.Token, 64)
	require.True(t, i.Valid(&entry, entry.Token))
	require.False(t, i.Valid(&entry, entry.Token+"x"))
	require.False(t, i.Valid(&entry, ""))
	require.False(t, i.Valid(nil, entry.Token))
}

func TestCSRFExpires(t *testing.T) {
	i := NewCSRFIssuer(60)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i.Now = func() time.Time { return base }

	entry := i.Issue()
	require.True(t, i.Valid(&entry, entry.Token))

	i.Now = func() time.Time { return base.Add(2 * time.Minute) }
	require.False(t, i.Valid(&entry, entry.Token))
}

func TestCSRFTokensAreUnique(t *testing.T) {
	i := NewCSRFIssuer(3600)
	require.NotEqual(t, i.Issue().Token, i.Issue().Token)
}
