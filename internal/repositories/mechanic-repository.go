package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
	db "felix-hub/internal/infrastructure/bd"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
)

var mechanicMap = map[string]string{
	"id":         "m.id",
	"active":     "m.active",
	"name":       "m.name",
	"email":      "m.email",
	"created_at": "m.created_at",
}

var mechanicColumns = []string{
	"m.id", "m.email", "m.password_hash", "m.name", "m.phone", "m.specialty",
	"m.telegram_id", "m.active", "m.created_at", "m.updated_at",
}

type MechanicRepositoryInterface interface {
	GetMechanics(ctx context.Context, filter types.Filter) ([]entities.Mechanic, error)
	FindMechanic(ctx context.Context, id uint64) (*entities.Mechanic, error)
	FindByEmail(ctx context.Context, email string) (*entities.Mechanic, error)
	CreateMechanic(ctx context.Context, tx pgx.Tx, mechanic entities.Mechanic) (uint64, error)
	UpdateMechanic(ctx context.Context, tx pgx.Tx, mechanic entities.Mechanic) error
	UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, passwordHash string) error
	DeleteMechanic(ctx context.Context, tx pgx.Tx, id uint64) error
}

type MechanicRepository struct {
	storage *pgxpool.Pool
}

func NewMechanicRepository(storage *pgxpool.Pool) MechanicRepositoryInterface {
	return &MechanicRepository{storage: storage}
}

func scanMechanic(row pgx.Row) (*entities.Mechanic, error) {
	var m entities.Mechanic
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Phone, &m.Specialty,
		&m.TelegramID, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrMechanicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования механика: %w", err)
	}
	return &m, nil
}

func (r *MechanicRepository) GetMechanics(ctx context.Context, filter types.Filter) ([]entities.Mechanic, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(mechanicColumns...).
		From("mechanics m")

	if filter.Search != "" {
		pat := containsPattern(filter.Search)
		builder = builder.Where(sq.Or{
			sq.ILike{"m.name": pat},
			sq.ILike{"m.email": pat},
			sq.ILike{"m.phone": pat},
		})
	}
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("m.name", "m.id")
	}
	builder = db.ApplyListParams(builder, filter, mechanicMap)
	builder = db.ApplyPaging(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения механиков: %w", err)
	}
	defer rows.Close()

	mechanics := make([]entities.Mechanic, 0)
	for rows.Next() {
		m, err := scanMechanic(rows)
		if err != nil {
			return nil, err
		}
		mechanics = append(mechanics, *m)
	}
	return mechanics, rows.Err()
}

func (r *MechanicRepository) findOne(ctx context.Context, where sq.Eq) (*entities.Mechanic, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(mechanicColumns...).
		From("mechanics m").
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanMechanic(r.storage.QueryRow(ctx, query, args...))
}

func (r *MechanicRepository) FindMechanic(ctx context.Context, id uint64) (*entities.Mechanic, error) {
	return r.findOne(ctx, sq.Eq{"m.id": id})
}

// FindByEmail ищет без учёта регистра.
func (r *MechanicRepository) FindByEmail(ctx context.Context, email string) (*entities.Mechanic, error) {
	return r.findOne(ctx, sq.Eq{"LOWER(m.email)": email})
}

func (r *MechanicRepository) CreateMechanic(ctx context.Context, tx pgx.Tx, m entities.Mechanic) (uint64, error) {
	query := `
		INSERT INTO mechanics (email, password_hash, name, phone, specialty, telegram_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`

	var id uint64
	err := getQuerier(r.storage, tx).QueryRow(ctx, query,
		m.Email, m.PasswordHash, m.Name, m.Phone, m.Specialty, m.TelegramID, m.Active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания механика: %w", mapPgError(err))
	}
	return id, nil
}

func (r *MechanicRepository) UpdateMechanic(ctx context.Context, tx pgx.Tx, m entities.Mechanic) error {
	query := `
		UPDATE mechanics
		SET email = $1, name = $2, phone = $3, specialty = $4, telegram_id = $5, active = $6, updated_at = NOW()
		WHERE id = $7`

	result, err := getQuerier(r.storage, tx).Exec(ctx, query,
		m.Email, m.Name, m.Phone, m.Specialty, m.TelegramID, m.Active, m.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления механика: %w", mapPgError(err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMechanicNotFound
	}
	return nil
}

func (r *MechanicRepository) UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, passwordHash string) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx,
		`UPDATE mechanics SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("ошибка смены пароля: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMechanicNotFound
	}
	return nil
}

func (r *MechanicRepository) DeleteMechanic(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx, `DELETE FROM mechanics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления механика: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMechanicNotFound
	}
	return nil
}
