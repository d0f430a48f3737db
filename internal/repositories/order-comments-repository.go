package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
)

type OrderCommentRepositoryInterface interface {
	CreateComment(ctx context.Context, tx pgx.Tx, comment entities.OrderComment) (*entities.OrderComment, error)
	GetComments(ctx context.Context, orderID uint64) ([]entities.OrderComment, error)
}

type OrderCommentRepository struct {
	storage *pgxpool.Pool
}

func NewOrderCommentRepository(storage *pgxpool.Pool) OrderCommentRepositoryInterface {
	return &OrderCommentRepository{storage: storage}
}

func (r *OrderCommentRepository) CreateComment(ctx context.Context, tx pgx.Tx, c entities.OrderComment) (*entities.OrderComment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO order_comments (order_id, mechanic_id, comment, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, order_id, mechanic_id, comment, created_at
		)
		SELECT i.id, i.order_id, i.mechanic_id, i.comment, i.created_at, m.name
		FROM inserted i
		LEFT JOIN mechanics m ON m.id = i.mechanic_id`

	var out entities.OrderComment
	err := getQuerier(r.storage, tx).QueryRow(ctx, query, c.OrderID, c.MechanicID, c.Comment).Scan(
		&out.ID, &out.OrderID, &out.MechanicID, &out.Comment, &out.CreatedAt, &out.MechanicName,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания комментария: %w", mapPgError(err))
	}
	return &out, nil
}

// GetComments - комментарии заказа, новые первыми.
func (r *OrderCommentRepository) GetComments(ctx context.Context, orderID uint64) ([]entities.OrderComment, error) {
	query := `
		SELECT c.id, c.order_id, c.mechanic_id, c.comment, c.created_at, m.name
		FROM order_comments c
		LEFT JOIN mechanics m ON m.id = c.mechanic_id
		WHERE c.order_id = $1
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев: %w", err)
	}
	defer rows.Close()

	comments := make([]entities.OrderComment, 0)
	for rows.Next() {
		var c entities.OrderComment
		if err := rows.Scan(&c.ID, &c.OrderID, &c.MechanicID, &c.Comment, &c.CreatedAt, &c.MechanicName); err != nil {
			return nil, fmt.Errorf("ошибка сканирования комментария: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
