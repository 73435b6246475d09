package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyCodeRequest applies a gift card code against a cart total.
type ApplyCodeRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cart_total"`
	Currency  string          `json:"currency"`
}

func (r ApplyCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Currency, validation.Required, validation.Length(3, 3)),
	)
}

// LineItem is one purchased order line, annotated with the gift-card
// spec the caller resolved from its catalog. One card is issued per
// gift-card line item, worth PerUnitAmount times Quantity.
type LineItem struct {
	LineItemID     *uuid.UUID      `json:"line_item_id,omitempty"`
	ProductID      string          `json:"product_id"`
	Quantity       int             `json:"quantity"`
	IsGiftCard     bool            `json:"is_gift_card"`
	PerUnitAmount  decimal.Decimal `json:"per_unit_amount"`
	RecipientEmail string          `json:"recipient_email"`
}

func (l LineItem) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ProductID, validation.Required),
		validation.Field(&l.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&l.RecipientEmail, validation.When(l.RecipientEmail != "", is.Email)),
	)
}

// IssueCardsRequest asks for the gift cards purchased in an order to
// be generated and stored.
type IssueCardsRequest struct {
	PurchaserEmail string     `json:"purchaser_email"`
	Currency       string     `json:"currency"`
	Items          []LineItem `json:"items"`
}

func (r IssueCardsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PurchaserEmail, validation.Required, is.Email),
		validation.Field(&r.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&r.Items, validation.Required),
	)
}

// IssueCardsResult reports what issuance actually produced.
type IssueCardsResult struct {
	Codes            []string `json:"codes"`
	Skipped          int      `json:"skipped"`
	AlreadyProcessed bool     `json:"already_processed"`
}

// AttachRedemptionRequest binds the session's pending redemption to an order.
type AttachRedemptionRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

func (r AttachRedemptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
	)
}

// FinalizeResult reports the settled redemption for an order.
type FinalizeResult struct {
	Code            string          `json:"code,omitempty"`
	Debited         decimal.Decimal `json:"debited"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          Status          `json:"status,omitempty"`
	AlreadyRedeemed bool            `json:"already_redeemed"`
	StaleRedemption bool            `json:"stale_redemption"`
	NoPending       bool            `json:"no_pending_redemption"`
}

// AdjustBalanceRequest overwrites a card's remaining balance from the
// back office.
type AdjustBalanceRequest struct {
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func (r AdjustBalanceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RemainingAmount, validation.By(func(interface{}) error {
			if r.RemainingAmount.IsNegative() {
				return fmt.Errorf("must not be negative")
			}
			return nil
		})),
	)
}

// RepriceRequest re-validates a pending redemption after cart totals change.
type RepriceRequest struct {
	CartTotal decimal.Decimal `json:"cart_total"`
	Currency  string          `json:"currency"`
}

func (r RepriceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Currency, validation.Required, validation.Length(3, 3)),
	)
}

// SearchFilter narrows the admin card listing.
type SearchFilter struct {
	Status Status `form:"status" json:"status"`
	Search string `form:"search" json:"search"`
}

func (f SearchFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.In(StatusActive, StatusUsedUp, StatusCancelled)),
		validation.Field(&f.Search, validation.Length(0, 128)),
	)
}
