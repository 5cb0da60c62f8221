package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "medipay/internal/errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

type stripeGateway struct {
	intents       paymentintent.Client
	signingSecret string
}

// NewStripeGateway opens orders as Stripe PaymentIntents. apiURL overrides
// the Stripe endpoint and is empty in production.
func NewStripeGateway(secretKey, signingSecret, apiURL string, httpClient *http.Client) Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	cfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiURL != "" {
		cfg.URL = stripe.String(apiURL)
	}
	return &stripeGateway{
		intents: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: secretKey,
		},
		signingSecret: signingSecret,
	}
}

func (g *stripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Receipt)
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe: %v", apperrors.ErrGatewayUnavailable, err)
	}
	return &Order{
		ID:          pi.ID,
		AmountMinor: pi.Amount,
		Currency:    strings.ToUpper(string(pi.Currency)),
		Receipt:     req.Receipt,
		Status:      string(pi.Status),
	}, nil
}

func (g *stripeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verify(g.signingSecret, orderID, paymentID, signature)
}

func (g *stripeGateway) KeyID() string { return "" }

func (g *stripeGateway) Name() string { return ProviderStripe }
