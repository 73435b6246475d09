package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
)

// Calculator decides whether a code can be redeemed against a cart
// total and how much of the balance is usable. It never mutates state.
type Calculator interface {
	CalculateUsableAmount(ctx context.Context, code string, cartTotal decimal.Decimal, currency string) (*model.RedemptionResult, error)
}

// IssuanceService generates and stores gift cards purchased in an order.
type IssuanceService interface {
	IssueCards(ctx context.Context, orderID uuid.UUID, req model.IssueCardsRequest) (*model.IssueCardsResult, error)
}

// RedemptionService drives the redemption lifecycle from applied code
// to settled balance debit. Pending redemptions are passed in and out
// as values; where the caller keeps them between requests is its own
// concern.
type RedemptionService interface {
	// Apply validates a code against a cart. On a valid verdict the
	// returned pending redemption carries the capped usable amount;
	// on an invalid verdict it is nil and the result holds the reason.
	Apply(ctx context.Context, req model.ApplyCodeRequest) (*model.RedemptionResult, *model.PendingRedemption, error)

	// Reprice re-caps a pending redemption after the cart total
	// changed. It returns nil when the card is no longer redeemable.
	Reprice(ctx context.Context, pending model.PendingRedemption, req model.RepriceRequest) (*model.PendingRedemption, error)

	AttachToOrder(ctx context.Context, orderID uuid.UUID, req model.AttachRedemptionRequest) error
	Finalize(ctx context.Context, orderID uuid.UUID) (*model.FinalizeResult, error)
}

// GiftCardService serves the admin surface: lookups plus manual
// balance adjustment.
type GiftCardService interface {
	ListCards(ctx context.Context, filter model.SearchFilter, page, pageSize int) ([]*model.GiftCard, int, error)
	GetByCode(ctx context.Context, code string) (*model.GiftCard, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.GiftCard, error)

	// AdjustBalance overwrites an active card's remaining balance,
	// marking it used up when set to zero.
	AdjustBalance(ctx context.Context, code string, newRemaining decimal.Decimal) (*model.GiftCard, error)
}
