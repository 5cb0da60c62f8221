package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "medipay/internal/errors"
)

type razorpayGateway struct {
	keyID   string
	secret  string
	baseURL string
	client  *http.Client
}

// NewRazorpayGateway talks to the Razorpay orders API. The key secret doubles
// as the callback signing secret.
func NewRazorpayGateway(keyID, secret, baseURL string, client *http.Client) Gateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &razorpayGateway{
		keyID:   keyID,
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay: %v", apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay: read response: %v", apperrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayError
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("%w: razorpay returned %d %s", apperrors.ErrGatewayUnavailable, resp.StatusCode, apiErr.Error.Description)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil || order.ID == "" {
		return nil, fmt.Errorf("%w: razorpay: malformed order response", apperrors.ErrGatewayUnavailable)
	}
	return &order, nil
}

func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verify(g.secret, orderID, paymentID, signature)
}

func (g *razorpayGateway) KeyID() string { return g.keyID }

func (g *razorpayGateway) Name() string { return ProviderRazorpay }
