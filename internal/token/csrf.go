package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// CSRFEntry is the single anti-forgery value bound to a session. Issuing a
// new one overwrites the previous entry, it does not rotate.
type CSRFEntry struct {
	Token   string
	Expires time.Time
}

type CSRFIssuer struct {
	TTL time.Duration

	Now func() time.Time
}

func NewCSRFIssuer(ttlSeconds int) *CSRFIssuer {
	return &CSRFIssuer{TTL: time.Duration(ttlSeconds) * time.Second}
}

func (i *CSRFIssuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *CSRFIssuer) Issue() CSRFEntry {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return CSRFEntry{
		Token:   hex.EncodeToString(b),
		Expires: i.now().Add(i.TTL),
	}
}

// Valid reports whether candidate matches entry and entry has not expired.
// Exact comparison matches the source behavior; CSRF tokens are not
// secret-equivalent to signatures.
func (i *CSRFIssuer) Valid(entry *CSRFEntry, candidate string) bool {
	if entry == nil || candidate == "" {
		return false
	}
	if entry.Token != candidate {
		return false
	}
	return entry.Expires.After(i.now())
}
