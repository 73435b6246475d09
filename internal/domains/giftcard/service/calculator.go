package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/repository"
	"giftcard-backend/pkg/logger"
)

// Shopper-facing rejection messages. The not-found and non-active
// cases share one message so the API does not leak which codes exist.
const (
	msgNotValid         = "This gift card is not valid or has already been fully used."
	msgNoCredit         = "This gift card has no remaining credit."
	msgCurrencyMismatch = "The gift card currency does not match the store currency."
	msgZeroTotal        = "A gift card cannot be applied to an order with a zero total."
)

type calculator struct {
	repo repository.GiftCardRepository
}

func NewCalculator(repo repository.GiftCardRepository) Calculator {
	return &calculator{repo: repo}
}

// CalculateUsableAmount evaluates a code against a cart total. The
// checks run in a fixed order so the shopper always sees the most
// specific rejection. Store errors surface as errors, never as an
// invalid verdict.
func (c *calculator) CalculateUsableAmount(ctx context.Context, code string, cartTotal decimal.Decimal, currency string) (*model.RedemptionResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	card, err := c.repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrGiftCardNotFound) {
			return invalid(msgNotValid), nil
		}
		return nil, err
	}

	if card.Status != model.StatusActive {
		if card.Status == model.StatusUsedUp {
			return invalid(msgNoCredit), nil
		}
		return invalid(msgNotValid), nil
	}

	if !card.RemainingAmount.IsPositive() {
		return invalid(msgNoCredit), nil
	}

	if !strings.EqualFold(card.Currency, currency) {
		logger.Warn("Gift card currency mismatch", map[string]interface{}{
			"code":           card.Code,
			"card_currency":  card.Currency,
			"store_currency": currency,
		})
		return invalid(msgCurrencyMismatch), nil
	}

	if !cartTotal.IsPositive() {
		return invalid(msgZeroTotal), nil
	}

	usable := decimal.Min(card.RemainingAmount, cartTotal)

	return &model.RedemptionResult{
		Status:   model.RedemptionValid,
		Usable:   usable,
		GiftCard: card,
	}, nil
}

func invalid(message string) *model.RedemptionResult {
	return &model.RedemptionResult{
		Status:  model.RedemptionInvalid,
		Usable:  decimal.Zero,
		Message: message,
	}
}
