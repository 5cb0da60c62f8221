package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type sandboxGateway struct {
	secret string
}

// NewSandboxGateway issues local order ids and verifies signatures with
// secret. It never leaves the process.
func NewSandboxGateway(secret string) Gateway {
	return &sandboxGateway{secret: secret}
}

func (g *sandboxGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Order{
		ID:          "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
	}, nil
}

func (g *sandboxGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verify(g.secret, orderID, paymentID, signature)
}

func (g *sandboxGateway) KeyID() string { return "rzp_test_sandbox" }

func (g *sandboxGateway) Name() string { return ProviderSandbox }
