package handlers

import (
	"context"

	"medipay/internal/models"
	"medipay/internal/services/referral"
	"medipay/internal/utils"
	"medipay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ReferralHandler struct {
	referralService referral.Service
}

func NewReferralHandler(referralService referral.Service) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// Create opens a referral for the calling patient and returns the payment order.
func (h *ReferralHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req referral.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	req.PatientID = claims.UserID

	res, err := h.referralService.Create(c.UserContext(), req)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, res)
}

func (h *ReferralHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	ref, err := h.referralService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	if !canView(claims, ref) {
		return utils.Forbidden(c, "not allowed to view this referral")
	}
	return utils.Success(c, ref)
}

func canView(claims *models.UserClaims, ref *models.Referral) bool {
	switch {
	case claims.IsAdmin():
		return true
	case claims.Role == models.RolePatient:
		return ref.PatientID == claims.UserID
	}
	return claims.ActsFor(ref.SourceHospitalID) || claims.ActsFor(ref.DestinationHospitalID)
}

func (h *ReferralHandler) ListMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	list, err := h.referralService.ListForPatient(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"referrals": list})
}

func (h *ReferralHandler) ListForHospital(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	direction := referral.Direction(c.Query("direction", string(referral.DirectionIncoming)))
	list, err := h.referralService.ListForHospital(c.UserContext(), claims.HospitalID, direction)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"referrals": list, "direction": direction})
}

func (h *ReferralHandler) Accept(c *fiber.Ctx) error {
	return h.decide(c, h.referralService.Accept)
}

func (h *ReferralHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.referralService.Reject)
}

type decision func(ctx context.Context, referralID, actingHospitalID string) (*models.Referral, error)

func (h *ReferralHandler) decide(c *fiber.Ctx, fn decision) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	ref, err := fn(c.UserContext(), c.Params("id"), claims.HospitalID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, ref)
}

type confirmPaymentRequest struct {
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// ConfirmPayment is called by the patient's client (or the gateway) after
// checkout. It is unauthenticated; the signature is the proof of payment.
func (h *ReferralHandler) ConfirmPayment(c *fiber.Ctx) error {
	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	settlement, err := h.referralService.ConfirmPayment(c.UserContext(), c.Params("id"), req.GatewayPaymentID, req.Signature)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, settlement)
}
