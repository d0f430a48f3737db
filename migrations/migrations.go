package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// sql.DB поверх пула нужен только goose, соединениями управляет pgxpool.
func open(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Up применяет все миграции, которых ещё нет в БД.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := open(pool)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("не удалось применить миграции: %w", err)
	}
	return nil
}

// Down откатывает последнюю миграцию.
func Down(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := open(pool)
	if err != nil {
		return err
	}
	return goose.DownContext(ctx, db, ".")
}

func Version(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db, err := open(pool)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
