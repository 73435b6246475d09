package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type giftCardService struct {
	repo        repository.GiftCardRepository
	orderStates repository.OrderStateRepository
}

func NewGiftCardService(repo repository.GiftCardRepository, orderStates repository.OrderStateRepository) GiftCardService {
	return &giftCardService{repo: repo, orderStates: orderStates}
}

func (s *giftCardService) ListCards(ctx context.Context, filter model.SearchFilter, page, pageSize int) ([]*model.GiftCard, int, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, model.NewValidationError("invalid search filter", err.Error())
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	cards, err := s.repo.Search(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func (s *giftCardService) GetByCode(ctx context.Context, code string) (*model.GiftCard, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListByOrder resolves the codes recorded on the order's state row and
// loads those cards, oldest first. Orders that never issued cards
// yield an empty list.
func (s *giftCardService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.GiftCard, error) {
	state, err := s.orderStates.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderStateNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(state.CreatedCodes) == 0 {
		return nil, nil
	}

	return s.repo.GetBySourceOrderAndCodes(ctx, orderID, state.CreatedCodes)
}

// AdjustBalance is the back-office edit path. It only touches active
// cards and keeps the status/balance invariant: a balance set to zero
// flips the card to used_up.
func (s *giftCardService) AdjustBalance(ctx context.Context, code string, newRemaining decimal.Decimal) (*model.GiftCard, error) {
	if newRemaining.IsNegative() {
		return nil, model.NewValidationError("remaining amount must not be negative", nil)
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))

	card, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if card.Status != model.StatusActive {
		return nil, model.NewConflictError(model.ErrCodeNotRedeemable, "only active gift cards can be adjusted")
	}
	if newRemaining.GreaterThan(card.InitialAmount) {
		return nil, model.NewValidationError("remaining amount must not exceed the initial amount", nil)
	}

	ok, err := s.repo.UpdateBalance(ctx, normalized, newRemaining)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewInternalError("balance update did not apply")
	}

	if newRemaining.IsZero() {
		if _, err := s.repo.MarkUsedUp(ctx, normalized); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByCode(ctx, normalized)
}
