package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
)

type NotificationLogRepositoryInterface interface {
	Create(ctx context.Context, log entities.NotificationLog) error
	GetFailures(ctx context.Context, since time.Time, limit int) ([]entities.NotificationLog, error)
}

type NotificationLogRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationLogRepository(storage *pgxpool.Pool) NotificationLogRepositoryInterface {
	return &NotificationLogRepository{storage: storage}
}

func (r *NotificationLogRepository) Create(ctx context.Context, l entities.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (order_id, type, recipient, success, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := r.storage.Exec(ctx, query, l.OrderID, l.Type, l.Recipient, l.Success, l.ErrorMessage); err != nil {
		return fmt.Errorf("ошибка записи журнала уведомлений: %w", err)
	}
	return nil
}

func (r *NotificationLogRepository) GetFailures(ctx context.Context, since time.Time, limit int) ([]entities.NotificationLog, error) {
	query := `
		SELECT id, order_id, type, recipient, success, error_message, created_at
		FROM notification_logs
		WHERE created_at >= $1 AND NOT success
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.storage.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения неудачных уведомлений: %w", err)
	}
	defer rows.Close()

	logs := make([]entities.NotificationLog, 0)
	for rows.Next() {
		var l entities.NotificationLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Type, &l.Recipient, &l.Success, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования журнала уведомлений: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
