package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the hex HMAC-SHA256 digest of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether claimed matches the HMAC-SHA256 digest of the raw
// payload under secret. The claimed value may carry a scheme prefix
// ("sha256=<hex>"); it is stripped before comparison. Comparison is
// constant-time. Verification never passes against an empty secret,
// empty payload, or empty claimed signature.
func Verify(payload []byte, claimed, secret string) bool {
	if len(payload) == 0 || claimed == "" || secret == "" {
		return false
	}

	if idx := strings.IndexByte(claimed, '='); idx >= 0 {
		claimed = claimed[idx+1:]
	}
	claimed = strings.ToLower(strings.TrimSpace(claimed))

	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(claimed))
}
