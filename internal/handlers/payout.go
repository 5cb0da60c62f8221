package handlers

import (
	"medipay/internal/services/payout"
	"medipay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PayoutHandler struct {
	payoutService payout.Service
}

func NewPayoutHandler(payoutService payout.Service) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// Request files a withdrawal for the caller's own hospital.
func (h *PayoutHandler) Request(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req payout.Request
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if req.HospitalID == "" {
		req.HospitalID = claims.HospitalID
	}
	if !claims.ActsFor(req.HospitalID) {
		return utils.Forbidden(c, "not allowed to request payouts for this hospital")
	}

	p, err := h.payoutService.Request(c.UserContext(), req)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, p)
}
