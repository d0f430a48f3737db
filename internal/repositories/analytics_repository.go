package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/dto"
	"felix-hub/pkg/constants"
)

// MechanicOrderCounts - счётчики заказов механика.
type MechanicOrderCounts struct {
	Active         int
	CompletedSince int
	TotalCompleted int
	AvgOrderTime   float64
}

type AnalyticsRepositoryInterface interface {
	OrdersPerDay(ctx context.Context, since time.Time) ([]dto.DailyOrdersDTO, error)
	StatusChanges(ctx context.Context, since time.Time) ([]dto.StatusChangeDTO, error)
	NotificationRates(ctx context.Context, since time.Time) ([]dto.NotificationRateDTO, error)
	MechanicOrderCounts(ctx context.Context, mechanicID uint64, completedSince time.Time) (*MechanicOrderCounts, error)
	OrdersByStatusSince(ctx context.Context, since time.Time) (map[string]int, error)
	CountStaleOrders(ctx context.Context, status string, createdBefore time.Time) (int, error)
}

type AnalyticsRepository struct {
	storage *pgxpool.Pool
}

func NewAnalyticsRepository(storage *pgxpool.Pool) AnalyticsRepositoryInterface {
	return &AnalyticsRepository{storage: storage}
}

func (r *AnalyticsRepository) OrdersPerDay(ctx context.Context, since time.Time) ([]dto.DailyOrdersDTO, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("TO_CHAR(DATE(o.created_at), 'YYYY-MM-DD') AS day", "COUNT(o.id)").
		From("orders o").
		Where(sq.GtOrEq{"o.created_at": since}).
		GroupBy("day").
		OrderBy("day DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета заказов по дням: %w", err)
	}
	defer rows.Close()

	result := make([]dto.DailyOrdersDTO, 0)
	for rows.Next() {
		var d dto.DailyOrdersDTO
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// StatusChanges считает переходы админ-статуса по журналу order_history.
func (r *AnalyticsRepository) StatusChanges(ctx context.Context, since time.Time) ([]dto.StatusChangeDTO, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("h.new_value", "COUNT(h.id)").
		From("order_history h").
		Where(sq.Eq{"h.event": constants.HistoryEventStatus}).
		Where(sq.GtOrEq{"h.created_at": since}).
		Where(sq.NotEq{"h.new_value": nil}).
		GroupBy("h.new_value").
		OrderBy("COUNT(h.id) DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета смен статуса: %w", err)
	}
	defer rows.Close()

	result := make([]dto.StatusChangeDTO, 0)
	for rows.Next() {
		var s dto.StatusChangeDTO
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// NotificationRates - итоги по типам уведомлений, без строки overall.
func (r *AnalyticsRepository) NotificationRates(ctx context.Context, since time.Time) ([]dto.NotificationRateDTO, error) {
	query := `
		SELECT type, COUNT(*), COUNT(*) FILTER (WHERE success)
		FROM notification_logs
		WHERE created_at >= $1
		GROUP BY type
		ORDER BY type`

	rows, err := r.storage.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета уведомлений: %w", err)
	}
	defer rows.Close()

	result := make([]dto.NotificationRateDTO, 0)
	for rows.Next() {
		var n dto.NotificationRateDTO
		if err := rows.Scan(&n.Type, &n.Total, &n.Successful); err != nil {
			return nil, err
		}
		n.Failed = n.Total - n.Successful
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *AnalyticsRepository) MechanicOrderCounts(ctx context.Context, mechanicID uint64, completedSince time.Time) (*MechanicOrderCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE work_status IN ($2, $3)),
			COUNT(*) FILTER (WHERE work_status = $4 AND updated_at >= $5),
			COUNT(*) FILTER (WHERE work_status = $4),
			COALESCE(AVG(total_time_minutes) FILTER (WHERE work_status = $4), 0)
		FROM orders
		WHERE assigned_mechanic_id = $1`

	var c MechanicOrderCounts
	err := r.storage.QueryRow(ctx, query, mechanicID,
		constants.WorkStatusInProgress, constants.WorkStatusPaused, constants.WorkStatusCompleted, completedSince,
	).Scan(&c.Active, &c.CompletedSince, &c.TotalCompleted, &c.AvgOrderTime)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета заказов механика: %w", err)
	}
	return &c, nil
}

func (r *AnalyticsRepository) OrdersByStatusSince(ctx context.Context, since time.Time) (map[string]int, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("o.status", "COUNT(o.id)").
		From("orders o").
		Where(sq.GtOrEq{"o.created_at": since}).
		GroupBy("o.status").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета заказов по статусам: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

// CountStaleOrders - заказы, застрявшие в статусе дольше порога.
func (r *AnalyticsRepository) CountStaleOrders(ctx context.Context, status string, createdBefore time.Time) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = $1 AND created_at < $2`, status, createdBefore).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета зависших заказов: %w", err)
	}
	return count, nil
}
