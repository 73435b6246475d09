package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcard-backend/internal/domains/giftcard/model"
)

func newRedemptionFixture() (*fakeCardRepo, *fakeOrderStateRepo, RedemptionService) {
	cards := newFakeCardRepo()
	states := newFakeOrderStateRepo()
	svc := NewRedemptionService(fakeTxManager{}, cards, states, NewCalculator(cards))
	return cards, states, svc
}

func pendingFor(code string, amount float64) model.PendingRedemption {
	return model.PendingRedemption{
		Code:      code,
		Amount:    decimal.NewFromFloat(amount),
		AppliedAt: time.Now(),
	}
}

func TestApply_ValidCodeYieldsPendingRedemption(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-APPLY", 100, 100, "EUR"))

	result, pending, err := svc.Apply(context.Background(), model.ApplyCodeRequest{
		Code:      "gift-apply",
		CartTotal: decimal.NewFromInt(40),
		Currency:  "EUR",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RedemptionValid, result.Status)
	require.NotNil(t, pending)
	assert.Equal(t, "GIFT-APPLY", pending.Code)
	assert.True(t, pending.Amount.Equal(decimal.NewFromInt(40)))
}

func TestApply_InvalidCodeYieldsNoPending(t *testing.T) {
	_, _, svc := newRedemptionFixture()

	result, pending, err := svc.Apply(context.Background(), model.ApplyCodeRequest{
		Code:      "GIFT-MISSING",
		CartTotal: decimal.NewFromInt(40),
		Currency:  "EUR",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RedemptionInvalid, result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, pending)
}

func TestReprice_CapsAtFreshUsableAmount(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-REPRICE", 100, 100, "EUR"))

	repriced, err := svc.Reprice(context.Background(), pendingFor("GIFT-REPRICE", 50), model.RepriceRequest{
		CartTotal: decimal.NewFromInt(20),
		Currency:  "EUR",
	})
	require.NoError(t, err)
	require.NotNil(t, repriced)
	assert.True(t, repriced.Amount.Equal(decimal.NewFromInt(20)))
}

func TestReprice_NeverGrowsTheAmount(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-REPRICE", 100, 100, "EUR"))

	repriced, err := svc.Reprice(context.Background(), pendingFor("GIFT-REPRICE", 30), model.RepriceRequest{
		CartTotal: decimal.NewFromInt(70),
		Currency:  "EUR",
	})
	require.NoError(t, err)
	require.NotNil(t, repriced)
	assert.True(t, repriced.Amount.Equal(decimal.NewFromInt(30)))
}

func TestReprice_DropsInvalidatedCard(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	card := activeCard("GIFT-GONE", 100, 100, "EUR")
	card.Status = model.StatusCancelled
	cards.put(card)

	repriced, err := svc.Reprice(context.Background(), pendingFor("GIFT-GONE", 50), model.RepriceRequest{
		CartTotal: decimal.NewFromInt(80),
		Currency:  "EUR",
	})
	require.NoError(t, err)
	assert.Nil(t, repriced)
}

func TestAttachToOrder_StoresNormalizedCode(t *testing.T) {
	_, states, svc := newRedemptionFixture()
	orderID := uuid.New()

	err := svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   " gift-attach ",
		Amount: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	state, err := states.Get(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, state.PendingCode)
	assert.Equal(t, "GIFT-ATTACH", *state.PendingCode)
	require.NotNil(t, state.PendingAmount)
	assert.True(t, state.PendingAmount.Equal(decimal.NewFromInt(25)))
}

func TestFinalize_DebitsAndMarksRedeemed(t *testing.T) {
	cards, states, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-SETTLE", 100, 100, "EUR"))
	orderID := uuid.New()

	require.NoError(t, svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   "GIFT-SETTLE",
		Amount: decimal.NewFromInt(30),
	}))

	result, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, result.Debited.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.RemainingAmount.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, model.StatusActive, result.Status)
	assert.False(t, result.StaleRedemption)

	card, err := cards.GetByCode(context.Background(), "GIFT-SETTLE")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.Equal(decimal.NewFromInt(70)))

	state, err := states.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, state.Redeemed)
}

func TestFinalize_ExhaustionFlipsStatus(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-DRAIN", 30, 30, "EUR"))
	orderID := uuid.New()

	require.NoError(t, svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   "GIFT-DRAIN",
		Amount: decimal.NewFromInt(30),
	}))

	result, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, result.RemainingAmount.IsZero())
	assert.Equal(t, model.StatusUsedUp, result.Status)

	card, err := cards.GetByCode(context.Background(), "GIFT-DRAIN")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.IsZero())
	assert.Equal(t, model.StatusUsedUp, card.Status)
}

func TestFinalize_ClampsOverdraw(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-THIN", 20, 100, "EUR"))
	orderID := uuid.New()

	require.NoError(t, svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   "GIFT-THIN",
		Amount: decimal.NewFromInt(30),
	}))

	result, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, result.RemainingAmount.IsZero())
	assert.Equal(t, model.StatusUsedUp, result.Status)
}

func TestFinalize_Idempotent(t *testing.T) {
	cards, _, svc := newRedemptionFixture()
	cards.put(activeCard("GIFT-ONCE", 100, 100, "EUR"))
	orderID := uuid.New()

	require.NoError(t, svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   "GIFT-ONCE",
		Amount: decimal.NewFromInt(40),
	}))

	_, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)

	second, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyRedeemed)
	assert.True(t, second.Debited.IsZero())

	// The balance moved exactly once.
	card, err := cards.GetByCode(context.Background(), "GIFT-ONCE")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.Equal(decimal.NewFromInt(60)))
}

func TestFinalize_StaleCardDebitsNothing(t *testing.T) {
	cards, states, svc := newRedemptionFixture()
	card := activeCard("GIFT-STALE", 100, 100, "EUR")
	card.Status = model.StatusCancelled
	cards.put(card)
	orderID := uuid.New()

	require.NoError(t, svc.AttachToOrder(context.Background(), orderID, model.AttachRedemptionRequest{
		Code:   "GIFT-STALE",
		Amount: decimal.NewFromInt(40),
	}))

	result, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, result.StaleRedemption)
	assert.True(t, result.Debited.IsZero())

	stored, err := cards.GetByCode(context.Background(), "GIFT-STALE")
	require.NoError(t, err)
	assert.True(t, stored.RemainingAmount.Equal(decimal.NewFromInt(100)))

	// Still marked redeemed so the order is not retried forever.
	state, err := states.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, state.Redeemed)
}

func TestFinalize_NoPendingRedemptionIsNoOp(t *testing.T) {
	_, states, svc := newRedemptionFixture()
	orderID := uuid.New()

	result, err := svc.Finalize(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, result.NoPending)
	assert.True(t, result.Debited.IsZero())

	// The redeemed flag stays unset so a later attach can still settle.
	state, err := states.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.False(t, state.Redeemed)
}
