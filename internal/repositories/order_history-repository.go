package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
)

type OrderHistoryRepositoryInterface interface {
	CreateHistoryEvent(ctx context.Context, tx pgx.Tx, event entities.OrderHistory) error
	GetByOrder(ctx context.Context, orderID uint64) ([]entities.OrderHistory, error)
}

type OrderHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewOrderHistoryRepository(storage *pgxpool.Pool) OrderHistoryRepositoryInterface {
	return &OrderHistoryRepository{storage: storage}
}

func (r *OrderHistoryRepository) CreateHistoryEvent(ctx context.Context, tx pgx.Tx, e entities.OrderHistory) error {
	query := `
		INSERT INTO order_history (order_id, event, old_value, new_value, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := getQuerier(r.storage, tx).Exec(ctx, query, e.OrderID, e.Event, e.OldValue, e.NewValue, e.Actor); err != nil {
		return fmt.Errorf("ошибка записи истории заказа: %w", mapPgError(err))
	}
	return nil
}

func (r *OrderHistoryRepository) GetByOrder(ctx context.Context, orderID uint64) ([]entities.OrderHistory, error) {
	query := `
		SELECT id, order_id, event, old_value, new_value, COALESCE(actor, ''), created_at
		FROM order_history
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории заказа: %w", err)
	}
	defer rows.Close()

	history := make([]entities.OrderHistory, 0)
	for rows.Next() {
		var h entities.OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Event, &h.OldValue, &h.NewValue, &h.Actor, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
