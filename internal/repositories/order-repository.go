package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
	db "felix-hub/internal/infrastructure/bd"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
)

// Ключ фильтра с нижней границей created_at (time.Time), обрабатывается отдельно.
const OrderFilterCreatedFrom = "created_from"

var orderMap = map[string]string{
	"id":                   "o.id",
	"status":               "o.status",
	"work_status":          "o.work_status",
	"mechanic":             "o.mechanic_name",
	"telegram_id":          "o.telegram_id",
	"assigned_mechanic_id": "o.assigned_mechanic_id",
	"category_id":          "o.category_id",
	"printed":              "o.printed",
	"created_at":           "o.created_at",
	"updated_at":           "o.updated_at",
}

var orderColumns = []string{
	"o.id", "o.mechanic_name", "o.telegram_id", "o.category", "o.category_id", "o.vin", "o.car_number",
	"o.selected_parts", "o.part_type", "o.is_original", "o.photo_url", "o.status", "o.printed", "o.language",
	"o.assigned_mechanic_id", "o.work_status", "o.comments_count", "o.total_time_minutes",
	"o.created_at", "o.updated_at", "m.name",
}

type OrderRepositoryInterface interface {
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	FindOrderForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	CreateOrder(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error)
	UpdateOrder(ctx context.Context, tx pgx.Tx, order entities.Order) error
	DeleteOrder(ctx context.Context, tx pgx.Tx, id uint64) error
	IncrementComments(ctx context.Context, tx pgx.Tx, id uint64) error
	AddTotalTime(ctx context.Context, tx pgx.Tx, id uint64, minutes int) error
	CountByStatus(ctx context.Context) (map[string]uint64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (uint64, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(
		&o.ID, &o.MechanicName, &o.TelegramID, &o.Category, &o.CategoryID, &o.VIN, &o.CarNumber,
		&o.SelectedParts, &o.PartType, &o.IsOriginal, &o.PhotoURL, &o.Status, &o.Printed, &o.Language,
		&o.AssignedMechanicID, &o.WorkStatus, &o.CommentsCount, &o.TotalTimeMinutes,
		&o.CreatedAt, &o.UpdatedAt, &o.AssignedMechanicName,
	)
	if err != nil {
		if mapped := mapPgError(err); mapped == apperrors.ErrNotFound {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
	}
	if o.SelectedParts == nil {
		o.SelectedParts = []entities.OrderPart{}
	}
	return &o, nil
}

func applyOrderSearch(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.Search != "" {
		pat := containsPattern(filter.Search)
		b = b.Where(sq.Or{
			sq.ILike{"o.vin": pat},
			sq.ILike{"o.car_number": pat},
			sq.ILike{"o.mechanic_name": pat},
			sq.ILike{"o.category": pat},
		})
	}
	if from, ok := filter.Filter[OrderFilterCreatedFrom].(time.Time); ok {
		b = b.Where(sq.GtOrEq{"o.created_at": from})
	}
	return b
}

// GetOrders возвращает страницу заказов (новые первыми) и общее количество.
func (r *OrderRepository) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countFilter := filter
	countFilter.Sort = nil
	countBuilder := psql.Select("COUNT(o.id)").From("orders o")
	countBuilder = applyOrderSearch(countBuilder, filter)
	countBuilder = db.ApplyListParams(countBuilder, countFilter, orderMap)

	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заказов: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	builder := psql.Select(orderColumns...).
		From("orders o").
		LeftJoin("mechanics m ON m.id = o.assigned_mechanic_id")
	builder = applyOrderSearch(builder, filter)
	builder = db.ApplyListParams(builder, filter, orderMap)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("o.created_at DESC", "o.id DESC")
	}
	builder = db.ApplyPaging(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0, min(int(total), max(filter.Limit, 1)))
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) findOne(ctx context.Context, tx pgx.Tx, id uint64, lock bool) (*entities.Order, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(orderColumns...).
		From("orders o").
		LeftJoin("mechanics m ON m.id = o.assigned_mechanic_id").
		Where(sq.Eq{"o.id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE OF o")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanOrder(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *OrderRepository) FindOrder(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.findOne(ctx, tx, id, false)
}

// FindOrderForUpdate блокирует строку заказа до конца транзакции.
func (r *OrderRepository) FindOrderForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return r.findOne(ctx, tx, id, tx != nil)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, o entities.Order) (uint64, error) {
	query := `
		INSERT INTO orders (
			mechanic_name, telegram_id, category, category_id, vin, car_number, selected_parts,
			part_type, is_original, photo_url, status, printed, language, assigned_mechanic_id, work_status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id`

	var id uint64
	err := getQuerier(r.storage, tx).QueryRow(ctx, query,
		o.MechanicName, o.TelegramID, o.Category, o.CategoryID, o.VIN, o.CarNumber, o.SelectedParts,
		o.PartType, o.IsOriginal, o.PhotoURL, o.Status, o.Printed, o.Language, o.AssignedMechanicID, o.WorkStatus,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заказа: %w", mapPgError(err))
	}
	return id, nil
}

// UpdateOrder сохраняет все изменяемые поля, счётчики не трогает.
func (r *OrderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, o entities.Order) error {
	query := `
		UPDATE orders
		SET mechanic_name = $1, telegram_id = $2, category = $3, category_id = $4, vin = $5, car_number = $6,
		    selected_parts = $7, part_type = $8, is_original = $9, photo_url = $10, status = $11, printed = $12,
		    language = $13, assigned_mechanic_id = $14, work_status = $15, updated_at = NOW()
		WHERE id = $16`

	result, err := getQuerier(r.storage, tx).Exec(ctx, query,
		o.MechanicName, o.TelegramID, o.Category, o.CategoryID, o.VIN, o.CarNumber,
		o.SelectedParts, o.PartType, o.IsOriginal, o.PhotoURL, o.Status, o.Printed,
		o.Language, o.AssignedMechanicID, o.WorkStatus, o.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления заказа: %w", mapPgError(err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заказа: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) IncrementComments(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx,
		`UPDATE orders SET comments_count = comments_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчика комментариев: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) AddTotalTime(ctx context.Context, tx pgx.Tx, id uint64, minutes int) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx,
		`UPDATE orders SET total_time_minutes = total_time_minutes + $1, updated_at = NOW() WHERE id = $2`, minutes, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления времени заказа: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.storage.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета по статусам: %w", err)
	}
	defer rows.Close()

	result := make(map[string]uint64)
	for rows.Next() {
		var status string
		var count uint64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *OrderRepository) CountCreatedSince(ctx context.Context, since time.Time) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета заказов за период: %w", err)
	}
	return count, nil
}
