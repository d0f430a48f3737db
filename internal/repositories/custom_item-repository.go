package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
)

const (
	customWorkColumns = `id, order_id, name, description, price, estimated_time_minutes, added_by_mechanic_id, created_at`
	customPartColumns = `id, order_id, name, part_number, price, quantity, added_by_mechanic_id, created_at`
)

type CustomItemRepositoryInterface interface {
	CreateWork(ctx context.Context, tx pgx.Tx, item entities.CustomWorkItem) (*entities.CustomWorkItem, error)
	CreatePart(ctx context.Context, tx pgx.Tx, item entities.CustomPartItem) (*entities.CustomPartItem, error)
	GetWorks(ctx context.Context, orderID uint64) ([]entities.CustomWorkItem, error)
	GetParts(ctx context.Context, orderID uint64) ([]entities.CustomPartItem, error)
}

type CustomItemRepository struct {
	storage *pgxpool.Pool
}

func NewCustomItemRepository(storage *pgxpool.Pool) CustomItemRepositoryInterface {
	return &CustomItemRepository{storage: storage}
}

func scanCustomWork(row pgx.Row) (*entities.CustomWorkItem, error) {
	var w entities.CustomWorkItem
	err := row.Scan(&w.ID, &w.OrderID, &w.Name, &w.Description, &w.Price,
		&w.EstimatedTimeMinutes, &w.AddedByMechanicID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanCustomPart(row pgx.Row) (*entities.CustomPartItem, error) {
	var p entities.CustomPartItem
	err := row.Scan(&p.ID, &p.OrderID, &p.Name, &p.PartNumber, &p.Price,
		&p.Quantity, &p.AddedByMechanicID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CustomItemRepository) CreateWork(ctx context.Context, tx pgx.Tx, item entities.CustomWorkItem) (*entities.CustomWorkItem, error) {
	query := `
		INSERT INTO custom_work_items (order_id, name, description, price, estimated_time_minutes, added_by_mechanic_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + customWorkColumns

	w, err := scanCustomWork(getQuerier(r.storage, tx).QueryRow(ctx, query,
		item.OrderID, item.Name, item.Description, item.Price, item.EstimatedTimeMinutes, item.AddedByMechanicID))
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления работы: %w", mapPgError(err))
	}
	return w, nil
}

func (r *CustomItemRepository) CreatePart(ctx context.Context, tx pgx.Tx, item entities.CustomPartItem) (*entities.CustomPartItem, error) {
	query := `
		INSERT INTO custom_part_items (order_id, name, part_number, price, quantity, added_by_mechanic_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + customPartColumns

	p, err := scanCustomPart(getQuerier(r.storage, tx).QueryRow(ctx, query,
		item.OrderID, item.Name, item.PartNumber, item.Price, item.Quantity, item.AddedByMechanicID))
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления запчасти: %w", mapPgError(err))
	}
	return p, nil
}

func (r *CustomItemRepository) GetWorks(ctx context.Context, orderID uint64) ([]entities.CustomWorkItem, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+customWorkColumns+` FROM custom_work_items WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения работ: %w", err)
	}
	defer rows.Close()

	items := make([]entities.CustomWorkItem, 0)
	for rows.Next() {
		w, err := scanCustomWork(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования работы: %w", err)
		}
		items = append(items, *w)
	}
	return items, rows.Err()
}

func (r *CustomItemRepository) GetParts(ctx context.Context, orderID uint64) ([]entities.CustomPartItem, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+customPartColumns+` FROM custom_part_items WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения запчастей: %w", err)
	}
	defer rows.Close()

	items := make([]entities.CustomPartItem, 0)
	for rows.Next() {
		p, err := scanCustomPart(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования запчасти: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
