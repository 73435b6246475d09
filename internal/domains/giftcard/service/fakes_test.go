package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/pkg/database"
)

// fakeTxManager runs the function directly; the fakes below ignore
// the nil tx they receive.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[string]*model.GiftCard

	// failCreates makes the next N Create calls fail with ErrDuplicateCode.
	failCreates int
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[string]*model.GiftCard)}
}

func (r *fakeCardRepo) put(card *model.GiftCard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	r.cards[card.Code] = card
}

func (r *fakeCardRepo) Create(ctx context.Context, card *model.GiftCard) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreates > 0 {
		r.failCreates--
		return uuid.Nil, model.ErrDuplicateCode
	}
	if _, exists := r.cards[card.Code]; exists {
		return uuid.Nil, model.ErrDuplicateCode
	}

	stored := *card
	stored.ID = uuid.New()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.cards[stored.Code] = &stored
	return stored.ID, nil
}

func (r *fakeCardRepo) GetByCode(ctx context.Context, code string) (*model.GiftCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[code]
	if !ok {
		return nil, model.ErrGiftCardNotFound
	}
	copied := *card
	return &copied, nil
}

func (r *fakeCardRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cards[code]
	return ok, nil
}

func (r *fakeCardRepo) UpdateBalance(ctx context.Context, code string, newRemaining decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[code]
	if !ok {
		return false, nil
	}
	card.RemainingAmount = newRemaining
	return true, nil
}

func (r *fakeCardRepo) MarkUsedUp(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[code]
	if !ok {
		return false, nil
	}
	card.Status = model.StatusUsedUp
	return true, nil
}

func (r *fakeCardRepo) Debit(ctx context.Context, tx pgx.Tx, code string, amount decimal.Decimal) (decimal.Decimal, model.Status, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[code]
	if !ok || card.Status != model.StatusActive {
		return decimal.Zero, "", false, nil
	}

	remaining := card.RemainingAmount.Sub(amount)
	if remaining.Sign() <= 0 {
		remaining = decimal.Zero
		card.Status = model.StatusUsedUp
	}
	card.RemainingAmount = remaining
	return remaining, card.Status, true, nil
}

func (r *fakeCardRepo) Search(ctx context.Context, filter model.SearchFilter, page, pageSize int) ([]*model.GiftCard, error) {
	matched := r.matching(filter)

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *fakeCardRepo) Count(ctx context.Context, filter model.SearchFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *fakeCardRepo) matching(filter model.SearchFilter) []*model.GiftCard {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.GiftCard
	needle := strings.ToLower(filter.Search)
	for _, card := range r.cards {
		if filter.Status != "" && card.Status != filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(card.Code), needle) &&
			!strings.Contains(strings.ToLower(card.PurchaserEmail), needle) &&
			!strings.Contains(strings.ToLower(card.RecipientEmail), needle) {
			continue
		}
		copied := *card
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	return matched
}

func (r *fakeCardRepo) GetBySourceOrderAndCodes(ctx context.Context, orderID uuid.UUID, codes []string) ([]*model.GiftCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	allowed := make(map[string]bool, len(codes))
	for _, code := range codes {
		allowed[code] = true
	}

	var matched []*model.GiftCard
	for _, card := range r.cards {
		if card.SourceOrderID != nil && *card.SourceOrderID == orderID && allowed[card.Code] {
			copied := *card
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

type fakeOrderStateRepo struct {
	mu     sync.Mutex
	states map[uuid.UUID]*model.OrderState
}

func newFakeOrderStateRepo() *fakeOrderStateRepo {
	return &fakeOrderStateRepo{states: make(map[uuid.UUID]*model.OrderState)}
}

func (r *fakeOrderStateRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.OrderState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[orderID]
	if !ok {
		state = &model.OrderState{OrderID: orderID, CreatedAt: time.Now()}
		r.states[orderID] = state
	}
	copied := *state
	return &copied, nil
}

func (r *fakeOrderStateRepo) Get(ctx context.Context, orderID uuid.UUID) (*model.OrderState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[orderID]
	if !ok {
		return nil, model.ErrOrderStateNotFound
	}
	copied := *state
	return &copied, nil
}

func (r *fakeOrderStateRepo) MarkCardsCreated(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[orderID]
	if !ok {
		return model.ErrOrderStateNotFound
	}
	state.GiftCardsCreated = true
	state.CreatedCodes = codes
	return nil
}

func (r *fakeOrderStateRepo) AttachRedemption(ctx context.Context, orderID uuid.UUID, code string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[orderID]
	if !ok {
		state = &model.OrderState{OrderID: orderID, CreatedAt: time.Now()}
		r.states[orderID] = state
	}
	state.PendingCode = &code
	state.PendingAmount = &amount
	return nil
}

func (r *fakeOrderStateRepo) MarkRedeemed(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[orderID]
	if !ok {
		return model.ErrOrderStateNotFound
	}
	state.Redeemed = true
	return nil
}

func activeCard(code string, remaining, initial float64, currency string) *model.GiftCard {
	return &model.GiftCard{
		ID:              uuid.New(),
		Code:            code,
		InitialAmount:   decimal.NewFromFloat(initial),
		RemainingAmount: decimal.NewFromFloat(remaining),
		Currency:        currency,
		Status:          model.StatusActive,
		CreatedAt:       time.Now(),
	}
}
