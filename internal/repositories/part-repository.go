package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
	db "felix-hub/internal/infrastructure/bd"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
)

var partMap = map[string]string{
	"id":          "p.id",
	"category_id": "p.category_id",
	"is_common":   "p.is_common",
	"sort_order":  "p.sort_order",
	"name_ru":     "p.name_ru",
	"created_at":  "p.created_at",
}

var partColumns = []string{
	"p.id", "p.category_id", "p.name_ru", "p.name_he", "p.name_en",
	"p.is_common", "p.sort_order", "p.created_at", "p.updated_at",
}

type PartRepositoryInterface interface {
	GetParts(ctx context.Context, filter types.Filter) ([]entities.Part, error)
	FindPart(ctx context.Context, id uint64) (*entities.Part, error)
	FindPartsByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Part, error)
	CreatePart(ctx context.Context, tx pgx.Tx, part entities.Part) (uint64, error)
	UpdatePart(ctx context.Context, tx pgx.Tx, part entities.Part) error
	DeletePart(ctx context.Context, tx pgx.Tx, id uint64) error
}

type PartRepository struct {
	storage *pgxpool.Pool
}

func NewPartRepository(storage *pgxpool.Pool) PartRepositoryInterface {
	return &PartRepository{storage: storage}
}

func scanPart(row pgx.Row) (*entities.Part, error) {
	var p entities.Part
	err := row.Scan(&p.ID, &p.CategoryID, &p.NameRu, &p.NameHe, &p.NameEn,
		&p.IsCommon, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped == apperrors.ErrNotFound {
			return nil, apperrors.ErrPartNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования детали: %w", err)
	}
	return &p, nil
}

// GetParts: фильтр по category_id и поиск по всем трём названиям.
func (r *PartRepository) GetParts(ctx context.Context, filter types.Filter) ([]entities.Part, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(partColumns...).
		From("parts p")

	if filter.Search != "" {
		pat := containsPattern(filter.Search)
		builder = builder.Where(sq.Or{
			sq.ILike{"p.name_ru": pat},
			sq.ILike{"p.name_he": pat},
			sq.ILike{"p.name_en": pat},
		})
	}
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("p.sort_order", "p.id")
	}
	builder = db.ApplyListParams(builder, filter, partMap)
	builder = db.ApplyPaging(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения деталей: %w", err)
	}
	defer rows.Close()

	parts := make([]entities.Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (r *PartRepository) FindPart(ctx context.Context, id uint64) (*entities.Part, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(partColumns...).
		From("parts p").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanPart(r.storage.QueryRow(ctx, query, args...))
}

func (r *PartRepository) FindPartsByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Part, error) {
	result := make(map[uint64]entities.Part, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(partColumns...).
		From("parts p").
		Where(sq.Eq{"p.id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения деталей по ID: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = *p
	}
	return result, rows.Err()
}

func (r *PartRepository) CreatePart(ctx context.Context, tx pgx.Tx, part entities.Part) (uint64, error) {
	query := `
		INSERT INTO parts (category_id, name_ru, name_he, name_en, is_common, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`

	var id uint64
	err := getQuerier(r.storage, tx).QueryRow(ctx, query,
		part.CategoryID, part.NameRu, part.NameHe, part.NameEn, part.IsCommon, part.SortOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания детали: %w", mapPgError(err))
	}
	return id, nil
}

func (r *PartRepository) UpdatePart(ctx context.Context, tx pgx.Tx, part entities.Part) error {
	query := `
		UPDATE parts
		SET category_id = $1, name_ru = $2, name_he = $3, name_en = $4, is_common = $5, sort_order = $6, updated_at = NOW()
		WHERE id = $7`

	result, err := getQuerier(r.storage, tx).Exec(ctx, query,
		part.CategoryID, part.NameRu, part.NameHe, part.NameEn, part.IsCommon, part.SortOrder, part.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления детали: %w", mapPgError(err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPartNotFound
	}
	return nil
}

func (r *PartRepository) DeletePart(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления детали: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPartNotFound
	}
	return nil
}
