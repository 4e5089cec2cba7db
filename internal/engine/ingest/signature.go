package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks webhook signatures against per-source shared secrets.
// A signature is an HMAC-SHA256 digest of the raw request body, hex
// encoded, optionally prefixed with "sha256=" (GitHub style).
type Verifier struct {
	secrets map[string]string
}

func NewVerifier(secrets map[string]string) *Verifier {
	if secrets == nil {
		secrets = map[string]string{}
	}
	return &Verifier{secrets: secrets}
}

// Verify reports whether header is a valid signature for body under the
// source's secret. Unknown sources and malformed digests are invalid.
// The comparison is constant time.
func (v *Verifier) Verify(source, header string, body []byte) bool {
	secret, ok := v.secrets[source]
	if !ok || secret == "" {
		return false
	}

	digest := strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	provided, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// Sign produces the signature value a source would send for body. Used by
// tests and by operators verifying their integration setup.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
