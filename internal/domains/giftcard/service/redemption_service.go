package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/repository"
	"giftcard-backend/pkg/database"
	"giftcard-backend/pkg/logger"
)

type redemptionService struct {
	tx          database.TxManager
	cards       repository.GiftCardRepository
	orderStates repository.OrderStateRepository
	calculator  Calculator
}

func NewRedemptionService(
	tx database.TxManager,
	cards repository.GiftCardRepository,
	orderStates repository.OrderStateRepository,
	calculator Calculator,
) RedemptionService {
	return &redemptionService{
		tx:          tx,
		cards:       cards,
		orderStates: orderStates,
		calculator:  calculator,
	}
}

func (s *redemptionService) Apply(ctx context.Context, req model.ApplyCodeRequest) (*model.RedemptionResult, *model.PendingRedemption, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, model.NewValidationError("invalid apply request", err.Error())
	}

	result, err := s.calculator.CalculateUsableAmount(ctx, req.Code, req.CartTotal, req.Currency)
	if err != nil {
		return nil, nil, err
	}

	if result.Status != model.RedemptionValid {
		return result, nil, nil
	}

	pending := &model.PendingRedemption{
		Code:      result.GiftCard.Code,
		Amount:    result.Usable,
		AppliedAt: time.Now(),
	}

	logger.Info("Gift card applied", map[string]interface{}{
		"code":   pending.Code,
		"amount": pending.Amount.String(),
	})

	return result, pending, nil
}

// Reprice re-validates a pending redemption after the cart total
// changed. The pending amount only ever shrinks here; it is capped at
// the fresh usable amount, and nil means the redemption must be
// dropped because the card is no longer valid.
func (s *redemptionService) Reprice(ctx context.Context, pending model.PendingRedemption, req model.RepriceRequest) (*model.PendingRedemption, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError("invalid reprice request", err.Error())
	}

	result, err := s.calculator.CalculateUsableAmount(ctx, pending.Code, req.CartTotal, req.Currency)
	if err != nil {
		return nil, err
	}

	if result.Status != model.RedemptionValid {
		return nil, nil
	}

	pending.Amount = decimal.Min(pending.Amount, result.Usable)
	return &pending, nil
}

// AttachToOrder copies the applied redemption onto the order so it
// survives the session and can be settled when payment completes.
func (s *redemptionService) AttachToOrder(ctx context.Context, orderID uuid.UUID, req model.AttachRedemptionRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewValidationError("invalid attach request", err.Error())
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	return s.orderStates.AttachRedemption(ctx, orderID, code, req.Amount)
}

// Finalize settles the order's pending redemption against the card
// balance. The debit is a single conditional update scoped to active
// cards, run in the same transaction as the redeemed-flag flip, so
// concurrent finalizations of two orders against one card can never
// drive the balance negative. A card that was cancelled or exhausted
// in the meantime yields no debit but still marks the order redeemed.
func (s *redemptionService) Finalize(ctx context.Context, orderID uuid.UUID) (*model.FinalizeResult, error) {
	var result *model.FinalizeResult
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		state, err := s.orderStates.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if state.Redeemed {
			result = &model.FinalizeResult{AlreadyRedeemed: true, Debited: decimal.Zero}
			return nil
		}

		// An order that never had a gift card applied finalizes as a
		// no-op; the redeemed flag stays unset so a later attach can
		// still settle.
		if state.PendingCode == nil || state.PendingAmount == nil {
			result = &model.FinalizeResult{NoPending: true, Debited: decimal.Zero}
			return nil
		}

		remaining, status, ok, err := s.cards.Debit(ctx, tx, *state.PendingCode, *state.PendingAmount)
		if err != nil {
			return err
		}

		if err := s.orderStates.MarkRedeemed(ctx, tx, orderID); err != nil {
			return err
		}

		if !ok {
			logger.Warn("Stale redemption, card no longer active", map[string]interface{}{
				"order_id": orderID.String(),
				"code":     *state.PendingCode,
			})
			result = &model.FinalizeResult{
				Code:            *state.PendingCode,
				Debited:         decimal.Zero,
				StaleRedemption: true,
			}
			return nil
		}

		logger.Info("Gift card redeemed", map[string]interface{}{
			"order_id":  orderID.String(),
			"code":      *state.PendingCode,
			"debited":   state.PendingAmount.String(),
			"remaining": remaining.String(),
		})

		result = &model.FinalizeResult{
			Code:            *state.PendingCode,
			Debited:         *state.PendingAmount,
			RemainingAmount: remaining,
			Status:          status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
