package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the callback signature for an order and payment:
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares in constant time.
func verify(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
