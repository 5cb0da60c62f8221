package handlers

import (
	"medipay/internal/models"
	"medipay/internal/services/payout"
	"medipay/internal/services/wallet"
	"medipay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
	payoutService payout.Service
}

func NewWalletHandler(walletService wallet.Service, payoutService payout.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		payoutService: payoutService,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// ownHospital resolves :hospitalId and checks the caller owns it or is an admin.
func ownHospital(c *fiber.Ctx) (string, bool, error) {
	claims, err := extractUserClaims(c)
	if err != nil {
		return "", false, utils.Unauthorized(c, "invalid claims")
	}
	hospitalID := c.Params("hospitalId")
	if !claims.ActsFor(hospitalID) {
		return "", false, utils.Forbidden(c, "not allowed to view this wallet")
	}
	return hospitalID, true, nil
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	hospitalID, ok, err := ownHospital(c)
	if !ok {
		return err
	}
	balance, err := h.walletService.GetBalance(c.UserContext(), hospitalID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, balance)
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	hospitalID, ok, err := ownHospital(c)
	if !ok {
		return err
	}
	p := utils.GetPagination(c, wallet.DefaultPageSize)
	page, err := h.walletService.ListTransactions(c.UserContext(), hospitalID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, err)
	}
	p.SetTotal(page.Total)
	return utils.Success(c, utils.NewPaginatedResponse(page.Transactions, p))
}

func (h *WalletHandler) GetStatistics(c *fiber.Ctx) error {
	hospitalID, ok, err := ownHospital(c)
	if !ok {
		return err
	}
	stats, err := h.walletService.Statistics(c.UserContext(), hospitalID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, stats)
}

func (h *WalletHandler) GetPayouts(c *fiber.Ctx) error {
	hospitalID, ok, err := ownHospital(c)
	if !ok {
		return err
	}
	p := utils.GetPagination(c, wallet.DefaultPageSize)
	page, err := h.payoutService.ListForHospital(c.UserContext(), hospitalID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, err)
	}
	p.SetTotal(page.Total)
	return utils.Success(c, utils.NewPaginatedResponse(page.Payouts, p))
}
