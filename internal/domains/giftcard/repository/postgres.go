package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"giftcard-backend/internal/domains/giftcard/model"
)

type postgresGiftCardRepository struct {
	db *pgxpool.Pool
}

func NewPostgresGiftCardRepository(db *pgxpool.Pool) GiftCardRepository {
	return &postgresGiftCardRepository{db: db}
}

const giftCardColumns = `id, code, initial_amount, remaining_amount, currency, status,
		source_order_id, source_line_item_id, purchaser_email, recipient_email,
		created_at, updated_at`

func scanGiftCard(row pgx.Row) (*model.GiftCard, error) {
	var card model.GiftCard
	err := row.Scan(
		&card.ID,
		&card.Code,
		&card.InitialAmount,
		&card.RemainingAmount,
		&card.Currency,
		&card.Status,
		&card.SourceOrderID,
		&card.SourceLineItemID,
		&card.PurchaserEmail,
		&card.RecipientEmail,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *postgresGiftCardRepository) Create(ctx context.Context, card *model.GiftCard) (uuid.UUID, error) {
	query := `
		INSERT INTO gift_cards (code, initial_amount, remaining_amount, currency, status,
			source_order_id, source_line_item_id, purchaser_email, recipient_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		card.Code,
		card.InitialAmount,
		card.RemainingAmount,
		card.Currency,
		card.Status,
		card.SourceOrderID,
		card.SourceLineItemID,
		card.PurchaserEmail,
		card.RecipientEmail,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, model.ErrDuplicateCode
		}
		return uuid.Nil, fmt.Errorf("failed to create gift card: %w", err)
	}

	return id, nil
}

func (r *postgresGiftCardRepository) GetByCode(ctx context.Context, code string) (*model.GiftCard, error) {
	query := fmt.Sprintf(`SELECT %s FROM gift_cards WHERE code = $1`, giftCardColumns)

	card, err := scanGiftCard(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGiftCardNotFound
		}
		return nil, fmt.Errorf("failed to get gift card: %w", err)
	}

	return card, nil
}

func (r *postgresGiftCardRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM gift_cards WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

func (r *postgresGiftCardRepository) UpdateBalance(ctx context.Context, code string, newRemaining decimal.Decimal) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE gift_cards
		SET remaining_amount = $2, updated_at = NOW()
		WHERE code = $1`,
		code, newRemaining)
	if err != nil {
		return false, fmt.Errorf("failed to update balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresGiftCardRepository) MarkUsedUp(ctx context.Context, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE gift_cards
		SET status = 'used_up', updated_at = NOW()
		WHERE code = $1`,
		code)
	if err != nil {
		return false, fmt.Errorf("failed to mark gift card used up: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresGiftCardRepository) Debit(ctx context.Context, tx pgx.Tx, code string, amount decimal.Decimal) (decimal.Decimal, model.Status, bool, error) {
	query := `
		UPDATE gift_cards
		SET remaining_amount = GREATEST(0, remaining_amount - $2),
		    status = CASE WHEN remaining_amount - $2 <= 0 THEN 'used_up' ELSE status END,
		    updated_at = NOW()
		WHERE code = $1 AND status = 'active'
		RETURNING remaining_amount, status`

	var remaining decimal.Decimal
	var status model.Status
	err := tx.QueryRow(ctx, query, code, amount).Scan(&remaining, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, "", false, nil
		}
		return decimal.Zero, "", false, fmt.Errorf("failed to debit gift card: %w", err)
	}

	return remaining, status, true, nil
}

func (r *postgresGiftCardRepository) Search(ctx context.Context, filter model.SearchFilter, page, pageSize int) ([]*model.GiftCard, error) {
	where, args := buildSearchWhere(filter)

	query := fmt.Sprintf(`SELECT %s FROM gift_cards %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		giftCardColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search gift cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.GiftCard
	for rows.Next() {
		card, err := scanGiftCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func (r *postgresGiftCardRepository) Count(ctx context.Context, filter model.SearchFilter) (int, error) {
	where, args := buildSearchWhere(filter)

	var total int
	err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM gift_cards %s`, where), args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count gift cards: %w", err)
	}
	return total, nil
}

func buildSearchWhere(filter model.SearchFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(code ILIKE $%d OR purchaser_email ILIKE $%d OR recipient_email ILIKE $%d)",
			argPos, argPos+1, argPos+2))
		args = append(args, pattern, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *postgresGiftCardRepository) GetBySourceOrderAndCodes(ctx context.Context, orderID uuid.UUID, codes []string) ([]*model.GiftCard, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM gift_cards
		WHERE source_order_id = $1 AND code = ANY($2)
		ORDER BY created_at ASC`, giftCardColumns)

	rows, err := r.db.Query(ctx, query, orderID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to list gift cards by order: %w", err)
	}
	defer rows.Close()

	var cards []*model.GiftCard
	for rows.Next() {
		card, err := scanGiftCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}
