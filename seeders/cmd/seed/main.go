package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"felix-hub/migrations"
	"felix-hub/pkg/config"
	"felix-hub/pkg/database/postgresql"
	"felix-hub/seeders"
)

var (
	forceCatalog     bool
	mechanicPassword string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Миграции и наполнение БД Felix Hub",
	Long: `Служебные команды для БД Felix Hub.

Примеры:
  go run ./seeders/cmd/seed migrate
  go run ./seeders/cmd/seed catalog --force
  go run ./seeders/cmd/seed mechanics --password secret1
  go run ./seeders/cmd/seed all`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции",
	RunE: withDB(func(ctx context.Context, db *pgxpool.Pool) error {
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
		version, err := migrations.Version(ctx, db)
		if err != nil {
			return err
		}
		log.Printf("✅ Версия схемы: %d", version)
		return nil
	}),
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Откатить последнюю миграцию",
	RunE: withDB(func(ctx context.Context, db *pgxpool.Pool) error {
		return migrations.Down(ctx, db)
	}),
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Заполнить каталог категорий и деталей",
	RunE: withDB(func(ctx context.Context, db *pgxpool.Pool) error {
		return seeders.SeedCatalog(ctx, db, forceCatalog)
	}),
}

var mechanicsCmd = &cobra.Command{
	Use:   "mechanics",
	Short: "Создать тестовых механиков",
	RunE: withDB(func(ctx context.Context, db *pgxpool.Pool) error {
		return seeders.SeedMechanics(ctx, db, mechanicPassword)
	}),
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Миграции, каталог и механики",
	RunE: withDB(func(ctx context.Context, db *pgxpool.Pool) error {
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
		if err := seeders.SeedCatalog(ctx, db, forceCatalog); err != nil {
			return fmt.Errorf("каталог: %w", err)
		}
		if err := seeders.SeedMechanics(ctx, db, mechanicPassword); err != nil {
			return fmt.Errorf("механики: %w", err)
		}
		return nil
	}),
}

// withDB подключается к БД из конфигурации и закрывает пул после команды.
func withDB(run func(ctx context.Context, db *pgxpool.Pool) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()
		db, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		log.Println("======================================================")
		if err := run(ctx, db); err != nil {
			return err
		}
		log.Println("✅ Готово")
		log.Println("======================================================")
		return nil
	}
}

func init() {
	catalogCmd.Flags().BoolVar(&forceCatalog, "force", false, "добавить каталог, даже если категории уже есть")
	allCmd.Flags().BoolVar(&forceCatalog, "force", false, "добавить каталог, даже если категории уже есть")
	mechanicsCmd.Flags().StringVar(&mechanicPassword, "password", "felix123", "пароль тестовых механиков")
	allCmd.Flags().StringVar(&mechanicPassword, "password", "felix123", "пароль тестовых механиков")

	rootCmd.AddCommand(migrateCmd, rollbackCmd, catalogCmd, mechanicsCmd, allCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
