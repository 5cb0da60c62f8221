package payment

import "context"

// Gateway is the external payment provider. CreateOrder is called once per
// referral and is never retried here; VerifySignature checks the callback
// the patient's client relays after paying.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key the client checkout needs; empty for providers without one.
	KeyID() string
	Name() string
}
