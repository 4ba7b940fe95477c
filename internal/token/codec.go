// Package token implements the compact signed bearer token used for API
// authentication, plus the session-bound CSRF token.
//
// The bearer format is header.payload.signature where header and payload are
// unpadded URL-safe base64 of their JSON encoding and the signature is
// HMAC-SHA256 over the first two segments. Tokens are never stored server
// side; verification recomputes the signature on every request.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("token: malformed token")
	ErrBadSignature   = errors.New("token: bad signature")
	ErrTokenExpired   = errors.New("token: expired")
)

type Codec struct {
	Secret []byte
	TTL    time.Duration

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func NewCodec(secret []byte, ttlSeconds int) *Codec {
	return &Codec{Secret: secret, TTL: time.Duration(ttlSeconds) * time.Second}
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Issue builds a signed token carrying claims plus injected iat/exp.
// The passed map is not mutated.
func (c *Codec) Issue(claims map[string]any) (string, error) {
	return c.IssueWithTTL(claims, c.TTL)
}

func (c *Codec) IssueWithTTL(claims map[string]any, ttl time.Duration) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}

	now := c.now().Unix()
	payload := make(map[string]any, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = now
	payload["exp"] = now + int64(ttl/time.Second)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("token: encode header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("token: encode claims: %w", err)
	}

	h64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	p64 := base64.RawURLEncoding.EncodeToString(payloadJSON)

	sig := c.sign(h64 + "." + p64)
	s64 := base64.RawURLEncoding.EncodeToString(sig)

	return h64 + "." + p64 + "." + s64, nil
}

// Verify checks structure, signature and expiry and returns the claims.
// The declared header alg is intentionally not inspected: the signature is
// always recomputed with HMAC-SHA256 (see the codec tests documenting this).
func (c *Codec) Verify(raw string) (map[string]any, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}

	expected := c.sign(parts[0] + "." + parts[1])
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return nil, ErrBadSignature
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}

	var claims map[string]any
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, ErrMalformedToken
	}

	if exp, ok := claims["exp"]; ok {
		if expNum, ok := exp.(float64); ok && int64(expNum) < c.now().Unix() {
			return nil, ErrTokenExpired
		}
	}

	return claims, nil
}

func (c *Codec) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
