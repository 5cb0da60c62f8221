package handlers

import (
	"medipay/internal/services/payout"
	"medipay/internal/services/wallet"
	"medipay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	payoutService payout.Service
	walletService wallet.Service
}

func NewAdminHandler(payoutService payout.Service, walletService wallet.Service) *AdminHandler {
	return &AdminHandler{
		payoutService: payoutService,
		walletService: walletService,
	}
}

func (h *AdminHandler) PendingPayouts(c *fiber.Ctx) error {
	pending, err := h.payoutService.ListPending(c.UserContext())
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"payouts": pending, "count": len(pending)})
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// notes reads the optional {notes} body.
func notes(c *fiber.Ctx) (string, error) {
	var req reviewRequest
	if len(c.Body()) == 0 {
		return "", nil
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return req.Notes, nil
}

func (h *AdminHandler) ApprovePayout(c *fiber.Ctx) error {
	n, err := notes(c)
	if err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	p, err := h.payoutService.Approve(c.UserContext(), c.Params("id"), n)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, p)
}

func (h *AdminHandler) RejectPayout(c *fiber.Ctx) error {
	n, err := notes(c)
	if err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	p, err := h.payoutService.Reject(c.UserContext(), c.Params("id"), n)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, p)
}

// Reconcile replays every wallet log and reports wallets whose totals drifted.
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.walletService.Reconcile(c.UserContext())
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"ok": report.OK(), "report": report})
}

func (h *AdminHandler) WalletOverview(c *fiber.Ctx) error {
	overview, err := h.walletService.Overview(c.UserContext())
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, overview)
}

// WalletTransactions is the platform-wide ledger feed, newest first.
func (h *AdminHandler) WalletTransactions(c *fiber.Ctx) error {
	p := utils.GetPagination(c, wallet.DefaultPageSize)
	page, err := h.walletService.ListAllTransactions(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, err)
	}
	p.SetTotal(page.Total)
	return utils.Success(c, utils.NewPaginatedResponse(page.Transactions, p))
}
