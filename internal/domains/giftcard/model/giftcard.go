package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusUsedUp    Status = "used_up"
	StatusCancelled Status = "cancelled"
)

// GiftCard is a prepaid store-credit card tracked as a balance ledger.
type GiftCard struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	InitialAmount    decimal.Decimal `json:"initial_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"status"`
	SourceOrderID    *uuid.UUID      `json:"source_order_id,omitempty"`
	SourceLineItemID *uuid.UUID      `json:"source_line_item_id,omitempty"`
	PurchaserEmail   string          `json:"purchaser_email"`
	RecipientEmail   string          `json:"recipient_email"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsUsable reports whether the card can still cover any amount.
func (g *GiftCard) IsUsable() bool {
	return g.Status == StatusActive && g.RemainingAmount.IsPositive()
}

// OrderState tracks the gift-card lifecycle flags of a single order:
// whether purchased cards were already issued and whether an applied
// redemption was already settled against the card balance.
type OrderState struct {
	OrderID          uuid.UUID        `json:"order_id"`
	GiftCardsCreated bool             `json:"gift_cards_created"`
	CreatedCodes     []string         `json:"created_codes"`
	PendingCode      *string          `json:"pending_code,omitempty"`
	PendingAmount    *decimal.Decimal `json:"pending_amount,omitempty"`
	Redeemed         bool             `json:"redeemed"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// PendingRedemption is a shopper's applied-but-unsettled discount,
// held against a checkout session until the order is finalized.
type PendingRedemption struct {
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// GiftCardSpec describes the gift-card nature of a purchasable item,
// resolved by the caller from its product catalog.
type GiftCardSpec struct {
	IsGiftCard    bool            `json:"is_gift_card"`
	PerUnitAmount decimal.Decimal `json:"per_unit_amount"`
}

// RedemptionStatus is the outcome class of a redemption calculation.
type RedemptionStatus string

const (
	RedemptionValid   RedemptionStatus = "valid"
	RedemptionInvalid RedemptionStatus = "invalid"
)

// RedemptionResult is the calculator's verdict for one code against
// one cart total. Usable is zero unless Status is valid.
type RedemptionResult struct {
	Status   RedemptionStatus `json:"status"`
	Usable   decimal.Decimal  `json:"usable_amount"`
	Message  string           `json:"message,omitempty"`
	GiftCard *GiftCard        `json:"gift_card,omitempty"`
}
