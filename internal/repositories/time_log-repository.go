package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
	apperrors "felix-hub/pkg/errors"
)

const activeTimerIndex = "uq_time_logs_active_mechanic"

const timeLogColumns = `id, order_id, mechanic_id, started_at, ended_at, duration_minutes, notes, is_active, created_at`

type TimeLogRepositoryInterface interface {
	StartTimer(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, startedAt time.Time) (*entities.TimeLog, error)
	FindActiveForOrder(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64) (*entities.TimeLog, error)
	FindActive(ctx context.Context, mechanicID uint64) (*entities.TimeLog, error)
	StopTimer(ctx context.Context, tx pgx.Tx, id uint64, endedAt time.Time, durationMinutes int, notes *string) (*entities.TimeLog, error)
	CreateManual(ctx context.Context, tx pgx.Tx, log entities.TimeLog) (*entities.TimeLog, error)
	GetByOrder(ctx context.Context, orderID uint64) ([]entities.TimeLog, error)
	GetHistory(ctx context.Context, mechanicID uint64, from, to time.Time) ([]entities.TimeLog, error)
	SumMinutes(ctx context.Context, mechanicID uint64, from *time.Time) (int, error)
}

type TimeLogRepository struct {
	storage *pgxpool.Pool
}

func NewTimeLogRepository(storage *pgxpool.Pool) TimeLogRepositoryInterface {
	return &TimeLogRepository{storage: storage}
}

func scanTimeLog(row pgx.Row) (*entities.TimeLog, error) {
	var l entities.TimeLog
	err := row.Scan(&l.ID, &l.OrderID, &l.MechanicID, &l.StartedAt, &l.EndedAt,
		&l.DurationMinutes, &l.Notes, &l.IsActive, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNoActiveTimer
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования записи времени: %w", err)
	}
	return &l, nil
}

func scanTimeLogs(rows pgx.Rows) ([]entities.TimeLog, error) {
	defer rows.Close()
	logs := make([]entities.TimeLog, 0)
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// StartTimer: второй активный таймер механика упирается в частичный уникальный индекс.
func (r *TimeLogRepository) StartTimer(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64, startedAt time.Time) (*entities.TimeLog, error) {
	query := `
		INSERT INTO time_logs (order_id, mechanic_id, started_at, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		RETURNING ` + timeLogColumns

	l, err := scanTimeLog(getQuerier(r.storage, tx).QueryRow(ctx, query, orderID, mechanicID, startedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == activeTimerIndex {
			return nil, apperrors.ErrTimerAlreadyRunning
		}
		return nil, mapPgError(err)
	}
	return l, nil
}

func (r *TimeLogRepository) FindActiveForOrder(ctx context.Context, tx pgx.Tx, orderID, mechanicID uint64) (*entities.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE order_id = $1 AND mechanic_id = $2 AND is_active
		FOR UPDATE`
	return scanTimeLog(getQuerier(r.storage, tx).QueryRow(ctx, query, orderID, mechanicID))
}

// FindActive возвращает (nil, nil), если таймер не запущен.
func (r *TimeLogRepository) FindActive(ctx context.Context, mechanicID uint64) (*entities.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE mechanic_id = $1 AND is_active`
	l, err := scanTimeLog(r.storage.QueryRow(ctx, query, mechanicID))
	if errors.Is(err, apperrors.ErrNoActiveTimer) {
		return nil, nil
	}
	return l, err
}

func (r *TimeLogRepository) StopTimer(ctx context.Context, tx pgx.Tx, id uint64, endedAt time.Time, durationMinutes int, notes *string) (*entities.TimeLog, error) {
	query := `
		UPDATE time_logs
		SET ended_at = $1, duration_minutes = $2, notes = COALESCE($3, notes), is_active = FALSE
		WHERE id = $4 AND is_active
		RETURNING ` + timeLogColumns
	return scanTimeLog(getQuerier(r.storage, tx).QueryRow(ctx, query, endedAt, durationMinutes, notes, id))
}

func (r *TimeLogRepository) CreateManual(ctx context.Context, tx pgx.Tx, log entities.TimeLog) (*entities.TimeLog, error) {
	query := `
		INSERT INTO time_logs (order_id, mechanic_id, started_at, ended_at, duration_minutes, notes, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING ` + timeLogColumns

	l, err := scanTimeLog(getQuerier(r.storage, tx).QueryRow(ctx, query,
		log.OrderID, log.MechanicID, log.StartedAt, log.EndedAt, log.DurationMinutes, log.Notes))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания записи времени: %w", mapPgError(err))
	}
	return l, nil
}

func (r *TimeLogRepository) GetByOrder(ctx context.Context, orderID uint64) ([]entities.TimeLog, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE order_id = $1 ORDER BY started_at DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения учёта времени: %w", err)
	}
	return scanTimeLogs(rows)
}

// GetHistory - сессии механика с started_at в [from, to).
func (r *TimeLogRepository) GetHistory(ctx context.Context, mechanicID uint64, from, to time.Time) ([]entities.TimeLog, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs
		WHERE mechanic_id = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at DESC`, mechanicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории времени: %w", err)
	}
	return scanTimeLogs(rows)
}

// SumMinutes суммирует завершённые сессии; from == nil - за всё время.
func (r *TimeLogRepository) SumMinutes(ctx context.Context, mechanicID uint64, from *time.Time) (int, error) {
	var total int
	err := r.storage.QueryRow(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM time_logs
		WHERE mechanic_id = $1 AND ($2::timestamptz IS NULL OR started_at >= $2)`, mechanicID, from).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета времени: %w", err)
	}
	return total, nil
}
