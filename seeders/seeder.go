package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"felix-hub/pkg/utils"
)

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SeedCatalog наполняет категории и детали. Если каталог уже не пуст, ничего не делает без force.
func SeedCatalog(ctx context.Context, db *pgxpool.Pool, force bool) error {
	log.Println("  - Наполнение таблиц 'categories' и 'parts'...")

	var existing int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 && !force {
		log.Printf("  - В каталоге уже %d категорий, пропускаю (используйте --force)", existing)
		return nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	parts := 0
	for i, c := range catalogData {
		var categoryID uint64
		err := tx.QueryRow(ctx,
			`INSERT INTO categories (name_ru, name_he, name_en, icon, sort_order) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			c.NameRu, nullIfEmpty(c.NameHe), nullIfEmpty(c.NameEn), c.Icon, i,
		).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("категория %q: %w", c.NameRu, err)
		}

		batch := &pgx.Batch{}
		for j, p := range c.Parts {
			batch.Queue(
				`INSERT INTO parts (category_id, name_ru, name_he, name_en, is_common, sort_order) VALUES ($1, $2, $3, $4, TRUE, $5)`,
				categoryID, p.NameRu, nullIfEmpty(p.NameHe), nullIfEmpty(p.NameEn), j,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("детали категории %q: %w", c.NameRu, err)
		}
		parts += len(c.Parts)
		log.Printf("    %s %s: %d деталей", c.Icon, c.NameRu, len(c.Parts))
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("  - Создано %d категорий и %d деталей", len(catalogData), parts)
	return nil
}

// SeedMechanics создаёт тестовых механиков, существующие email пропускаются.
func SeedMechanics(ctx context.Context, db *pgxpool.Pool, password string) error {
	log.Println("  - Наполнение таблицы 'mechanics'...")
	if len(password) < 6 {
		return fmt.Errorf("пароль механика должен быть не короче 6 символов")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	query := `INSERT INTO mechanics (email, password_hash, name, phone, specialty, active)
		VALUES ($1, $2, $3, $4, $5, TRUE) ON CONFLICT (email) DO NOTHING`
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, m := range mechanicsData {
		tag, err := tx.Exec(ctx, query, m.Email, hash, m.Name, m.Phone, m.Specialty)
		if err != nil {
			return fmt.Errorf("механик %s: %w", m.Email, err)
		}
		if tag.RowsAffected() > 0 {
			created++
			log.Printf("    %s (%s)", m.Name, m.Specialty)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("  - Создано механиков: %d", created)
	return nil
}
