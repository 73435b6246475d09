package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
)

type postgresOrderStateRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderStateRepository(db *pgxpool.Pool) OrderStateRepository {
	return &postgresOrderStateRepository{db: db}
}

const orderStateColumns = `order_id, gift_cards_created, created_codes, pending_code,
		pending_amount, redeemed, created_at, updated_at`

func scanOrderState(row pgx.Row) (*model.OrderState, error) {
	var state model.OrderState
	err := row.Scan(
		&state.OrderID,
		&state.GiftCardsCreated,
		&state.CreatedCodes,
		&state.PendingCode,
		&state.PendingAmount,
		&state.Redeemed,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *postgresOrderStateRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.OrderState, error) {
	// Insert-if-absent first so the row lock below always has a row to take.
	_, err := tx.Exec(ctx,
		`INSERT INTO order_states (order_id) VALUES ($1) ON CONFLICT (order_id) DO NOTHING`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure order state: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM order_states WHERE order_id = $1 FOR UPDATE`, orderStateColumns)
	state, err := scanOrderState(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock order state: %w", err)
	}

	return state, nil
}

func (r *postgresOrderStateRepository) Get(ctx context.Context, orderID uuid.UUID) (*model.OrderState, error) {
	query := fmt.Sprintf(`SELECT %s FROM order_states WHERE order_id = $1`, orderStateColumns)

	state, err := scanOrderState(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderStateNotFound
		}
		return nil, fmt.Errorf("failed to get order state: %w", err)
	}

	return state, nil
}

func (r *postgresOrderStateRepository) MarkCardsCreated(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, codes []string) error {
	_, err := tx.Exec(ctx, `
		UPDATE order_states
		SET gift_cards_created = TRUE, created_codes = $2, updated_at = NOW()
		WHERE order_id = $1`,
		orderID, codes)
	if err != nil {
		return fmt.Errorf("failed to mark cards created: %w", err)
	}
	return nil
}

func (r *postgresOrderStateRepository) AttachRedemption(ctx context.Context, orderID uuid.UUID, code string, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_states (order_id, pending_code, pending_amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE
		SET pending_code = EXCLUDED.pending_code,
		    pending_amount = EXCLUDED.pending_amount,
		    updated_at = NOW()`,
		orderID, code, amount)
	if err != nil {
		return fmt.Errorf("failed to attach redemption: %w", err)
	}
	return nil
}

func (r *postgresOrderStateRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE order_states
		SET redeemed = TRUE, updated_at = NOW()
		WHERE order_id = $1`,
		orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order redeemed: %w", err)
	}
	return nil
}
