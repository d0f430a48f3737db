package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepositoryInterface interface {
	Upsert(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error
	Remove(ctx context.Context, tx pgx.Tx, orderID uint64) error
}

// AssignmentRepository ведёт work_order_assignments: у заказа не больше одного текущего исполнителя.
type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage}
}

// Upsert назначает механика, снимая прежние назначения заказа.
func (r *AssignmentRepository) Upsert(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error {
	q := getQuerier(r.storage, tx)
	if _, err := q.Exec(ctx,
		`DELETE FROM work_order_assignments WHERE order_id = $1 AND mechanic_id <> $2`, orderID, mechanicID); err != nil {
		return fmt.Errorf("ошибка снятия назначения: %w", err)
	}

	query := `
		INSERT INTO work_order_assignments (order_id, mechanic_id, status, assigned_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (order_id, mechanic_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`
	if _, err := q.Exec(ctx, query, orderID, mechanicID, status); err != nil {
		return fmt.Errorf("ошибка назначения механика: %w", mapPgError(err))
	}
	return nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, status string) error {
	_, err := getQuerier(r.storage, tx).Exec(ctx,
		`UPDATE work_order_assignments SET status = $1, updated_at = NOW() WHERE order_id = $2 AND mechanic_id = $3`,
		status, orderID, mechanicID)
	if err != nil {
		return fmt.Errorf("ошибка обновления назначения: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) Remove(ctx context.Context, tx pgx.Tx, orderID uint64) error {
	_, err := getQuerier(r.storage, tx).Exec(ctx, `DELETE FROM work_order_assignments WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("ошибка снятия назначения: %w", err)
	}
	return nil
}
