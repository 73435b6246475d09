package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
)

// GiftCardRepository persists gift cards and their balances.
type GiftCardRepository interface {
	Create(ctx context.Context, card *model.GiftCard) (uuid.UUID, error)
	GetByCode(ctx context.Context, code string) (*model.GiftCard, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// UpdateBalance overwrites the remaining balance. Manual adjustment
	// path only; the settlement path goes through Debit. The caller is
	// responsible for computing a legal value first.
	UpdateBalance(ctx context.Context, code string, newRemaining decimal.Decimal) (bool, error)

	// MarkUsedUp flips the card status to used_up.
	MarkUsedUp(ctx context.Context, code string) (bool, error)

	// Debit atomically subtracts amount from an active card's balance,
	// clamping at zero and flipping the status to used_up when the
	// balance is exhausted. It returns the post-debit balance and
	// status. ok is false when no active row matched the code.
	Debit(ctx context.Context, tx pgx.Tx, code string, amount decimal.Decimal) (remaining decimal.Decimal, status model.Status, ok bool, err error)

	Search(ctx context.Context, filter model.SearchFilter, page, pageSize int) ([]*model.GiftCard, error)
	Count(ctx context.Context, filter model.SearchFilter) (int, error)

	// GetBySourceOrderAndCodes loads the cards an order issued,
	// restricted to the given allow-list of codes, oldest first.
	GetBySourceOrderAndCodes(ctx context.Context, orderID uuid.UUID, codes []string) ([]*model.GiftCard, error)
}

// OrderStateRepository persists per-order issuance and redemption flags.
type OrderStateRepository interface {
	// GetForUpdate loads (creating if absent) the order's state row and
	// locks it for the duration of the transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.OrderState, error)
	Get(ctx context.Context, orderID uuid.UUID) (*model.OrderState, error)
	MarkCardsCreated(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, codes []string) error
	AttachRedemption(ctx context.Context, orderID uuid.UUID, code string, amount decimal.Decimal) error
	MarkRedeemed(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}
