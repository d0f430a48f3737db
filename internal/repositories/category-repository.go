package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/internal/entities"
	apperrors "felix-hub/pkg/errors"
)

var categoryColumns = []string{
	"c.id", "c.name_ru", "c.name_he", "c.name_en", "c.icon", "c.sort_order", "c.created_at", "c.updated_at",
}

type CategoryRepositoryInterface interface {
	GetCategories(ctx context.Context) ([]entities.Category, error)
	FindCategory(ctx context.Context, id uint64) (*entities.Category, error)
	CreateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) (uint64, error)
	UpdateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) error
	DeleteCategory(ctx context.Context, tx pgx.Tx, id uint64) error
}

type CategoryRepository struct {
	storage *pgxpool.Pool
}

func NewCategoryRepository(storage *pgxpool.Pool) CategoryRepositoryInterface {
	return &CategoryRepository{storage: storage}
}

func scanCategory(row pgx.Row) (*entities.Category, error) {
	var c entities.Category
	err := row.Scan(&c.ID, &c.NameRu, &c.NameHe, &c.NameEn, &c.Icon, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped == apperrors.ErrNotFound {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]entities.Category, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(categoryColumns...).
		From("categories c").
		OrderBy("c.sort_order", "c.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения категорий: %w", err)
	}
	defer rows.Close()

	categories := make([]entities.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) FindCategory(ctx context.Context, id uint64) (*entities.Category, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(categoryColumns...).
		From("categories c").
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanCategory(r.storage.QueryRow(ctx, query, args...))
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) (uint64, error) {
	query := `
		INSERT INTO categories (name_ru, name_he, name_en, icon, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`

	var id uint64
	err := getQuerier(r.storage, tx).QueryRow(ctx, query,
		category.NameRu, category.NameHe, category.NameEn, category.Icon, category.SortOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания категории: %w", mapPgError(err))
	}
	return id, nil
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, tx pgx.Tx, category entities.Category) error {
	query := `
		UPDATE categories
		SET name_ru = $1, name_he = $2, name_en = $3, icon = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := getQuerier(r.storage, tx).Exec(ctx, query,
		category.NameRu, category.NameHe, category.NameEn, category.Icon, category.SortOrder, category.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления категории: %w", mapPgError(err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory удаляет категорию, детали уходят каскадом (FK ON DELETE CASCADE).
func (r *CategoryRepository) DeleteCategory(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := getQuerier(r.storage, tx).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
