package payment

import (
	"fmt"
	"net/http"

	"medipay/internal/config"
)

// NewGateway builds the provider named by cfg.PaymentProvider.
func NewGateway(cfg *config.Config) (Gateway, error) {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.PaymentProvider {
	case ProviderRazorpay:
		return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, client), nil
	case ProviderStripe:
		return NewStripeGateway(cfg.StripeSecretKey, cfg.SigningSecret(), "", client), nil
	case ProviderSandbox, "":
		return NewSandboxGateway(cfg.SigningSecret()), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
}
