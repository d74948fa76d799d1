package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signPayload computes the hex-encoded HMAC-SHA256 the gateway uses for
// callback signatures: the digest of "<orderRef>|<paymentRef>" keyed with
// the API key secret.
func signPayload(keySecret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature recomputes the expected signature server-side and compares
// in constant time. The secret never leaves this package.
func verifySignature(keySecret, orderRef, paymentRef, signature string) error {
	if keySecret == "" {
		return ErrMissingCredentials
	}
	if signature == "" {
		return ErrSignatureMismatch
	}
	expected := signPayload(keySecret, orderRef, paymentRef)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
