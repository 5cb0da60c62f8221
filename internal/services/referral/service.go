package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/services/hospital"
	"medipay/internal/services/notification"
	"medipay/internal/services/payment"
	"medipay/internal/services/split"
	"medipay/internal/services/wallet"
	"medipay/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// errClaimLost means another confirmation settled the referral first.
var errClaimLost = errors.New("settlement claimed by a concurrent confirmation")

// Deps are the collaborators the referral service is built from.
type Deps struct {
	Store      repositories.Store
	Ledger     Ledger
	Gateway    payment.Gateway
	Calculator split.Calculator
	Fallback   split.Calculator
	Directory  hospital.Directory
	Capacity   hospital.CapacityTracker
	Notifier   notification.Notifier
	Log        zerolog.Logger
}

type service struct {
	Deps
	config Config
	now    func() time.Time
}

// NewService creates the referral service.
func NewService(deps Deps, config Config) Service {
	if deps.Store == nil || deps.Ledger == nil || deps.Gateway == nil {
		panic("store, ledger and gateway are required")
	}
	if deps.Directory == nil || deps.Capacity == nil {
		panic("hospital directory and capacity tracker are required")
	}
	if deps.Calculator == nil {
		deps.Calculator = split.OccupancyWeighted{}
	}
	if deps.Fallback == nil {
		deps.Fallback = split.DefaultFallback
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.NewLogNotifier(deps.Log)
	}
	if config.Currency == "" {
		config.Currency = wallet.DefaultCurrency
	}
	deps.Log = deps.Log.With().Str("component", "referral").Logger()

	return &service{Deps: deps, config: config, now: time.Now}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	v := validation.New()
	v.Required("patient_id", req.PatientID)
	v.Struct(req)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if req.SourceHospitalID == req.DestinationHospitalID {
		return nil, fmt.Errorf("%w: source and destination hospital must differ", apperrors.ErrInvalidState)
	}

	source, err := s.Directory.GetHospital(ctx, req.SourceHospitalID)
	if err != nil {
		return nil, err
	}
	destination, err := s.Directory.GetHospital(ctx, req.DestinationHospitalID)
	if err != nil {
		return nil, err
	}

	occupancy, err := s.Capacity.GetOccupancy(ctx, destination.ID)
	if err != nil {
		return nil, fmt.Errorf("read destination capacity: %w", err)
	}
	if occupancy >= 100 {
		return nil, fmt.Errorf("%w: %s has no capacity", apperrors.ErrInvalidState, destination.Name)
	}

	id := uuid.NewString()
	fee := s.config.ReferralFee
	order, err := s.Gateway.CreateOrder(ctx, payment.OrderRequest{
		AmountMinor: payment.ToMinorUnits(fee),
		Currency:    s.config.Currency,
		Receipt:     payment.Receipt(id),
		Notes: map[string]string{
			"referral_id": id,
			"patient_id":  req.PatientID,
		},
	})
	if err != nil {
		s.Log.Error().Err(err).Str("referral_id", id).Str("provider", s.Gateway.Name()).Msg("payment order creation failed")
		if !errors.Is(err, apperrors.ErrGatewayUnavailable) {
			err = fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
		}
		return nil, err
	}

	ref := &models.Referral{
		ID:                    id,
		PatientID:             req.PatientID,
		SourceHospitalID:      source.ID,
		DestinationHospitalID: destination.ID,
		Reason:                req.Reason,
		Status:                models.ReferralStatusPending,
		PaymentOrderID:        order.ID,
		PaymentStatus:         models.PaymentStatusUnpaid,
		Currency:              s.config.Currency,
		Breakdown: models.PaymentBreakdown{
			PatientAmount:            fee,
			PlatformFee:              s.config.PlatformFee,
			HospitalShare:            fee.Sub(s.config.PlatformFee),
			SourceHospitalShare:      decimal.Zero,
			DestinationHospitalShare: decimal.Zero,
		},
	}
	if err := s.Store.Referrals().Create(ctx, ref); err != nil {
		return nil, err
	}

	s.Log.Info().
		Str("referral_id", id).
		Str("source", source.ID).
		Str("destination", destination.ID).
		Str("order_id", order.ID).
		Msg("referral created")
	s.notify(ctx, destination.ID, fmt.Sprintf("New referral from %s", source.Name))

	return &CreateResult{
		ReferralID:     id,
		PaymentOrderID: order.ID,
		AmountDue:      fee,
		AmountMinor:    payment.ToMinorUnits(fee),
		Currency:       s.config.Currency,
		KeyID:          s.Gateway.KeyID(),
	}, nil
}

func (s *service) Accept(ctx context.Context, referralID, actingHospitalID string) (*models.Referral, error) {
	return s.decide(ctx, referralID, actingHospitalID, models.ReferralStatusAccepted)
}

func (s *service) Reject(ctx context.Context, referralID, actingHospitalID string) (*models.Referral, error) {
	return s.decide(ctx, referralID, actingHospitalID, models.ReferralStatusRejected)
}

// decide moves a PENDING referral to ACCEPTED or REJECTED on behalf of its destination hospital.
func (s *service) decide(ctx context.Context, referralID, actingHospitalID string, to models.ReferralStatus) (*models.Referral, error) {
	ref, err := s.Get(ctx, referralID)
	if err != nil {
		return nil, err
	}
	if actingHospitalID == "" || ref.DestinationHospitalID != actingHospitalID {
		return nil, fmt.Errorf("%w: only the destination hospital may %s a referral", apperrors.ErrForbidden, verb(to))
	}

	ok, err := s.Store.Referrals().UpdateStatus(ctx, referralID,
		[]models.ReferralStatus{models.ReferralStatusPending}, to, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.Get(ctx, referralID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot %s a %s referral", apperrors.ErrInvalidState, verb(to), current.Status)
	}

	updated, err := s.Get(ctx, referralID)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Str("referral_id", referralID).Str("status", string(to)).Msg("referral decided")
	s.notify(ctx, updated.PatientID, "Your referral has been "+strings.ToLower(string(to)))
	return updated, nil
}

func verb(to models.ReferralStatus) string {
	if to == models.ReferralStatusAccepted {
		return "accept"
	}
	return "reject"
}

// ConfirmPayment verifies the gateway callback and, exactly once per
// referral, credits both hospitals and completes the referral. Repeated or
// concurrent confirmations return the stored settlement.
func (s *service) ConfirmPayment(ctx context.Context, referralID, gatewayPaymentID, signature string) (*Settlement, error) {
	ref, err := s.Get(ctx, referralID)
	if err != nil {
		return nil, err
	}
	if ref.PaymentOrderID == "" {
		return nil, fmt.Errorf("%w: referral has no payment order", apperrors.ErrInvalidState)
	}

	if !s.Gateway.VerifySignature(ref.PaymentOrderID, gatewayPaymentID, signature) {
		s.Log.Warn().Str("referral_id", referralID).Str("order_id", ref.PaymentOrderID).Msg("payment signature rejected")
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrInvalidSignature, ref.PaymentOrderID)
	}

	if ref.IsSettled() {
		return settlementOf(ref, true), nil
	}
	if ref.Status == models.ReferralStatusRejected {
		return nil, fmt.Errorf("%w: referral was rejected", apperrors.ErrInvalidState)
	}

	total := ref.Breakdown.HospitalShare
	parts, fellBack, err := s.splitShare(ctx, ref, total)
	if err != nil {
		return nil, err
	}

	breakdown := ref.Breakdown
	breakdown.SourceHospitalShare = parts.Source
	breakdown.DestinationHospitalShare = parts.Destination
	if !breakdown.Balanced() {
		return nil, fmt.Errorf("unbalanced breakdown for referral %s", referralID)
	}

	err = s.Store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		claimed, err := tx.Referrals().ClaimSettlement(ctx, referralID, gatewayPaymentID, breakdown, s.now())
		if err != nil {
			return err
		}
		if !claimed {
			return errClaimLost
		}
		return s.credit(ctx, tx, ref, breakdown)
	})
	if errors.Is(err, errClaimLost) {
		winner, gerr := s.Get(ctx, referralID)
		if gerr != nil {
			return nil, gerr
		}
		if winner.IsSettled() {
			return settlementOf(winner, true), nil
		}
		return nil, fmt.Errorf("%w: referral is %s", apperrors.ErrInvalidState, winner.Status)
	}
	if err != nil {
		return nil, err
	}

	s.Ledger.Invalidate(ctx, ref.SourceHospitalID, ref.DestinationHospitalID)

	settled, err := s.Get(ctx, referralID)
	if err != nil {
		return nil, err
	}
	s.Log.Info().
		Str("referral_id", referralID).
		Str("payment_id", gatewayPaymentID).
		Str("source_share", parts.Source.String()).
		Str("destination_share", parts.Destination.String()).
		Bool("fallback_split", fellBack).
		Msg("referral payment settled")

	s.notify(ctx, ref.SourceHospitalID, fmt.Sprintf("Referral earning of %s %s credited", parts.Source.StringFixed(2), ref.Currency))
	s.notify(ctx, ref.DestinationHospitalID, fmt.Sprintf("Referral earning of %s %s credited", parts.Destination.StringFixed(2), ref.Currency))
	s.notify(ctx, ref.PatientID, "Payment received, your referral is confirmed")

	out := settlementOf(settled, false)
	out.FallbackSplit = fellBack
	return out, nil
}

func (s *service) splitShare(ctx context.Context, ref *models.Referral, total decimal.Decimal) (split.Split, bool, error) {
	srcOcc, srcErr := s.Capacity.GetOccupancy(ctx, ref.SourceHospitalID)
	dstOcc, dstErr := s.Capacity.GetOccupancy(ctx, ref.DestinationHospitalID)
	if err := errors.Join(srcErr, dstErr); err != nil {
		s.Log.Warn().Err(err).Str("referral_id", ref.ID).Msg("occupancy unavailable, using fallback split")
		return split.Resolve(nil, s.Fallback, 0, 0, total)
	}

	parts, fellBack, err := split.Resolve(s.Calculator, s.Fallback, srcOcc, dstOcc, total)
	if fellBack {
		s.Log.Warn().Str("referral_id", ref.ID).Msg("split calculator output rejected, using fallback split")
	}
	return parts, fellBack, err
}

func (s *service) credit(ctx context.Context, tx repositories.Store, ref *models.Referral, b models.PaymentBreakdown) error {
	postings := []wallet.Entry{
		{
			HospitalID:  ref.SourceHospitalID,
			Type:        models.TransactionTypeReferralEarning,
			Amount:      b.SourceHospitalShare,
			Description: fmt.Sprintf("Referral earning (referring hospital) for referral %s", ref.ID),
			ReferralID:  ref.ID,
		},
		{
			HospitalID:  ref.DestinationHospitalID,
			Type:        models.TransactionTypeReferralEarning,
			Amount:      b.DestinationHospitalShare,
			Description: fmt.Sprintf("Referral earning (receiving hospital) for referral %s", ref.ID),
			ReferralID:  ref.ID,
		},
	}
	for _, e := range postings {
		// A zero share is possible for tiny fees; there is nothing to post.
		if e.Amount.IsZero() {
			continue
		}
		if _, err := s.Ledger.Apply(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, referralID string) (*models.Referral, error) {
	ref, err := s.Store.Referrals().GetByID(ctx, referralID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: referral %s", apperrors.ErrNotFound, referralID)
	}
	return ref, err
}

func (s *service) ListForPatient(ctx context.Context, patientID string) ([]models.Referral, error) {
	return s.Store.Referrals().ListByPatient(ctx, patientID)
}

func (s *service) ListForHospital(ctx context.Context, hospitalID string, direction Direction) ([]models.Referral, error) {
	switch direction {
	case DirectionIncoming, "":
		return s.Store.Referrals().ListByHospital(ctx, hospitalID, true)
	case DirectionOutgoing:
		return s.Store.Referrals().ListByHospital(ctx, hospitalID, false)
	}
	return nil, fmt.Errorf("%w: unknown direction %q", apperrors.ErrInvalidState, direction)
}

func (s *service) notify(ctx context.Context, userID, message string) {
	if err := s.Notifier.Notify(ctx, userID, message); err != nil {
		s.Log.Warn().Err(err).Str("user_id", userID).Msg("notification failed")
	}
}
