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

type issuanceService struct {
	tx          database.TxManager
	cards       repository.GiftCardRepository
	orderStates repository.OrderStateRepository
	codegen     *CodeGenerator
}

func NewIssuanceService(
	tx database.TxManager,
	cards repository.GiftCardRepository,
	orderStates repository.OrderStateRepository,
	codegen *CodeGenerator,
) IssuanceService {
	return &issuanceService{
		tx:          tx,
		cards:       cards,
		orderStates: orderStates,
		codegen:     codegen,
	}
}

// IssueCards generates one card per gift-card line item, worth the
// per-unit amount times the quantity. The order's created flag is
// checked and flipped under a row lock so a replayed request never
// issues a second batch. A failure on one card skips that line item
// and continues; the order is marked processed even when every card
// failed, keeping the at-most-once contract.
func (s *issuanceService) IssueCards(ctx context.Context, orderID uuid.UUID, req model.IssueCardsRequest) (*model.IssueCardsResult, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError("invalid issuance request", err.Error())
	}

	var result *model.IssueCardsResult
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		state, err := s.orderStates.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if state.GiftCardsCreated {
			logger.Info("Gift cards already issued for order", map[string]interface{}{
				"order_id": orderID.String(),
			})
			result = &model.IssueCardsResult{
				Codes:            state.CreatedCodes,
				AlreadyProcessed: true,
			}
			return nil
		}

		result = &model.IssueCardsResult{Codes: []string{}}
		currency := strings.ToUpper(req.Currency)

		for _, item := range req.Items {
			if !item.IsGiftCard || !item.PerUnitAmount.IsPositive() {
				continue
			}

			recipient := item.RecipientEmail
			if recipient == "" {
				recipient = req.PurchaserEmail
			}

			code, err := s.issueOne(ctx, orderID, item, currency, req.PurchaserEmail, recipient)
			if err != nil {
				logger.ErrorWithFields("Failed to issue gift card, skipping line item", err, map[string]interface{}{
					"order_id":   orderID.String(),
					"product_id": item.ProductID,
				})
				result.Skipped++
				continue
			}
			result.Codes = append(result.Codes, code)
		}

		if err := s.orderStates.MarkCardsCreated(ctx, tx, orderID, result.Codes); err != nil {
			return err
		}

		logger.Info("Gift cards issued", map[string]interface{}{
			"order_id": orderID.String(),
			"issued":   len(result.Codes),
			"skipped":  result.Skipped,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *issuanceService) issueOne(ctx context.Context, orderID uuid.UUID, item model.LineItem, currency, purchaser, recipient string) (string, error) {
	code, err := s.codegen.Generate(ctx)
	if err != nil {
		return "", err
	}

	amount := item.PerUnitAmount.Mul(decimal.NewFromInt(int64(item.Quantity)))

	card := &model.GiftCard{
		Code:             code,
		InitialAmount:    amount,
		RemainingAmount:  amount,
		Currency:         currency,
		Status:           model.StatusActive,
		SourceOrderID:    &orderID,
		SourceLineItemID: item.LineItemID,
		PurchaserEmail:   purchaser,
		RecipientEmail:   recipient,
		CreatedAt:        time.Now(),
	}

	if _, err := s.cards.Create(ctx, card); err != nil {
		return "", err
	}

	return code, nil
}
