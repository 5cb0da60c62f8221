package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medipay/internal/handlers"
	"medipay/internal/middleware"
	"medipay/internal/models"
	"medipay/internal/repositories/memstore"
	"medipay/internal/services/hospital"
	"medipay/internal/services/payment"
	"medipay/internal/services/payout"
	"medipay/internal/services/referral"
	"medipay/internal/services/wallet"
	"medipay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret     = "routes-test-secret"
	signingSecret = "routes-signing-secret"
)

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, health map[string]handlers.Check) *testServer {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	store := memstore.New()
	hosp := hospital.NewService(store.Hospitals())
	require.NoError(t, hosp.Register(ctx, &models.Hospital{ID: "src", Name: "Source Clinic", TotalBeds: 50, OccupiedBeds: 5}))
	require.NoError(t, hosp.Register(ctx, &models.Hospital{ID: "dst", Name: "Destination Hospital", TotalBeds: 200}))

	ledger := wallet.NewService(store, nil, wallet.Config{}, nil, log)
	referrals := referral.NewService(referral.Deps{
		Store:     store,
		Ledger:    ledger,
		Gateway:   payment.NewSandboxGateway(signingSecret),
		Directory: hosp,
		Capacity:  hosp,
		Log:       log,
	}, referral.Config{ReferralFee: decimal.NewFromInt(150), PlatformFee: decimal.NewFromInt(40)})
	payouts := payout.NewService(store, ledger, nil, payout.Config{Minimum: decimal.NewFromInt(10)}, log)

	app := NewApp(AppConfig{Log: log})
	SetupRoutes(app, Services{
		Referral: referrals,
		Wallet:   ledger,
		Payout:   payouts,
		Auth:     middleware.NewAuthMiddleware(jwtSecret, log),
		Health:   health,
	})
	return &testServer{app: app}
}

func bearer(t *testing.T, claims models.UserClaims) string {
	t.Helper()
	tok, err := utils.GenerateToken(jwtSecret, claims, time.Hour)
	require.NoError(t, err)
	return tok
}

var (
	patient = models.UserClaims{UserID: "pat-1", Role: models.RolePatient}
	srcUser = models.UserClaims{UserID: "u-src", Role: models.RoleHospital, HospitalID: "src"}
	dstUser = models.UserClaims{UserID: "u-dst", Role: models.RoleHospital, HospitalID: "dst"}
	admin   = models.UserClaims{UserID: "root", Role: models.RoleAdmin}
)

func (s *testServer) do(t *testing.T, method, path string, claims *models.UserClaims, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		req.Header.Set("Authorization", "Bearer "+bearer(t, *claims))
	}
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestReferralToPayoutFlow(t *testing.T) {
	s := newTestServer(t, nil)

	var created referral.CreateResult
	status := s.do(t, http.MethodPost, "/api/referrals", &patient, fiber.Map{
		"source_hospital_id":      "src",
		"destination_hospital_id": "dst",
		"reason":                  "cardiology consult",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.AmountDue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "rzp_test_sandbox", created.KeyID)

	status = s.do(t, http.MethodPost, "/api/referrals/"+created.ReferralID+"/accept", &srcUser, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status = s.do(t, http.MethodPost, "/api/referrals/"+created.ReferralID+"/accept", &dstUser, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	confirm := fiber.Map{
		"gateway_payment_id": "pay_001",
		"signature":          payment.Sign(signingSecret, created.PaymentOrderID, "pay_001"),
	}
	var settlement referral.Settlement
	status = s.do(t, http.MethodPost, "/api/referrals/"+created.ReferralID+"/confirm-payment", nil, confirm, &settlement)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.ReferralStatusCompleted, settlement.Status)
	assert.False(t, settlement.AlreadySettled)
	assert.True(t, settlement.Breakdown.SourceHospitalShare.Equal(decimal.NewFromInt(44)))
	assert.True(t, settlement.Breakdown.DestinationHospitalShare.Equal(decimal.NewFromInt(66)))

	var again referral.Settlement
	status = s.do(t, http.MethodPost, "/api/referrals/"+created.ReferralID+"/confirm-payment", nil, confirm, &again)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, again.AlreadySettled)

	var balance wallet.Balance
	status = s.do(t, http.MethodGet, "/api/wallets/src/balance", &srcUser, nil, &balance)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(44)))

	status = s.do(t, http.MethodGet, "/api/wallets/src/balance", &dstUser, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var p models.PayoutRequest
	status = s.do(t, http.MethodPost, "/api/payouts", &srcUser, fiber.Map{
		"hospital_id": "src",
		"amount":      "40",
		"bank_details": fiber.Map{
			"account_holder_name": "Source Clinic LLP",
			"account_number":      "000123456789",
			"ifsc_code":           "SBIN0004321",
			"bank_name":           "State Bank",
		},
	}, &p)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "****6789", p.BankDetails.AccountNumber)

	status = s.do(t, http.MethodGet, "/api/admin/payouts/pending", &srcUser, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var approved models.PayoutRequest
	status = s.do(t, http.MethodPost, "/api/admin/payouts/"+p.ID+"/approve", &admin, fiber.Map{"notes": "ok"}, &approved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PayoutStatusApproved, approved.Status)

	status = s.do(t, http.MethodGet, "/api/wallets/src/balance", &admin, nil, &balance)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(4)))

	var page struct {
		Data       []models.WalletTransaction `json:"data"`
		Pagination utils.Pagination           `json:"pagination"`
	}
	status = s.do(t, http.MethodGet, "/api/wallets/src/transactions?limit=1", &srcUser, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), page.Pagination.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.TransactionTypeWithdrawal, page.Data[0].Type)

	var recon struct {
		OK bool `json:"ok"`
	}
	status = s.do(t, http.MethodGet, "/api/admin/wallets/reconcile", &admin, nil, &recon)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, recon.OK)

	var overview wallet.Overview
	status = s.do(t, http.MethodGet, "/api/admin/wallets/overview", &admin, nil, &overview)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), overview.Wallets)
	assert.True(t, overview.TotalBalance.Equal(decimal.NewFromInt(70)))
	assert.True(t, overview.TotalEarned.Equal(decimal.NewFromInt(110)))
	assert.True(t, overview.TotalWithdrawn.Equal(decimal.NewFromInt(40)))
	assert.Zero(t, overview.PendingPayoutCount)
	assert.Equal(t, int64(1), overview.CompletedReferrals)
	assert.True(t, overview.PlatformRevenue.Equal(decimal.NewFromInt(40)))

	status = s.do(t, http.MethodGet, "/api/admin/wallets/overview", &srcUser, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var feed struct {
		Data       []wallet.LedgerEntry `json:"data"`
		Pagination utils.Pagination     `json:"pagination"`
	}
	status = s.do(t, http.MethodGet, "/api/admin/wallets/transactions?limit=2", &admin, nil, &feed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), feed.Pagination.Total)
	require.Len(t, feed.Data, 2)
	assert.Equal(t, models.TransactionTypeWithdrawal, feed.Data[0].Type)
	assert.Equal(t, "src", feed.Data[0].HospitalID)
	assert.Equal(t, "Source Clinic", feed.Data[0].HospitalName)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	status := s.do(t, http.MethodPost, "/api/referrals/unknown/confirm-payment", nil,
		fiber.Map{"gateway_payment_id": "pay", "signature": "sig"}, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)

	status = s.do(t, http.MethodPost, "/api/referrals/unknown/confirm-payment", nil, fiber.Map{}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)

	var created referral.CreateResult
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/referrals", &patient,
		fiber.Map{"source_hospital_id": "src", "destination_hospital_id": "dst"}, &created))

	status = s.do(t, http.MethodPost, "/api/referrals/"+created.ReferralID+"/confirm-payment", nil,
		fiber.Map{"gateway_payment_id": "pay", "signature": "forged"}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SIGNATURE", body.Code)

	status = s.do(t, http.MethodPost, "/api/referrals", &patient,
		fiber.Map{"source_hospital_id": "src", "destination_hospital_id": "src"}, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", body.Code)

	status = s.do(t, http.MethodPost, "/api/payouts", &dstUser, fiber.Map{"hospital_id": "dst", "amount": "50",
		"bank_details": fiber.Map{"account_holder_name": "D", "account_number": "123456789", "ifsc_code": "HDFC0001234", "bank_name": "HDFC"}}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body.Code)

	status = s.do(t, http.MethodPost, "/api/payouts", &dstUser, fiber.Map{"hospital_id": "src", "amount": "50"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = s.do(t, http.MethodPost, "/api/referrals", &dstUser, fiber.Map{}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = s.do(t, http.MethodGet, "/api/referrals/mine", nil, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReferralVisibility(t *testing.T) {
	s := newTestServer(t, nil)

	var created referral.CreateResult
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/referrals", &patient,
		fiber.Map{"source_hospital_id": "src", "destination_hospital_id": "dst"}, &created))

	other := models.UserClaims{UserID: "pat-2", Role: models.RolePatient}
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/referrals/"+created.ReferralID, &other, nil, nil))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/referrals/"+created.ReferralID, &patient, nil, nil))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/referrals/"+created.ReferralID, &srcUser, nil, nil))

	var mine struct {
		Referrals []models.Referral `json:"referrals"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/referrals/mine", &patient, nil, &mine))
	assert.Len(t, mine.Referrals, 1)

	var incoming struct {
		Referrals []models.Referral `json:"referrals"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/hospitals/me/referrals?direction=incoming", &dstUser, nil, &incoming))
	assert.Len(t, incoming.Referrals, 1)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/hospitals/me/referrals?direction=outgoing", &dstUser, nil, &incoming))
	assert.Empty(t, incoming.Referrals)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Check{
		"database": func(context.Context) error { return nil },
	})
	var body struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil, nil, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "connected", body.Services["database"])

	s = newTestServer(t, map[string]handlers.Check{
		"redis": func(context.Context) error { return errors.New("dial tcp: connection refused") },
	})
	require.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/health", nil, nil, &body))
	assert.Equal(t, "degraded", body.Status)
}
