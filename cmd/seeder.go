package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/workforce-attendance/internal/auth"
	"github.com/frahmantamala/workforce-attendance/internal/seed"
	"github.com/spf13/cobra"
)

var fixturesPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the permission catalog, schedules, users and time off described in the fixtures file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		fx, err := seed.LoadFile(fixturesPath)
		if err != nil {
			log.Fatalf("failed to load fixtures: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		hash := func(password string) (string, error) {
			return auth.HashPassword(password, cfg.Security.BCryptCost)
		}
		if err := seed.Apply(context.Background(), gdb, fx, hash, clearData); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}

		log.Printf("seeded %d permissions, %d roles, %d schedules, %d users, %d holidays",
			len(fx.Permissions), len(fx.Roles), len(fx.Schedules), len(fx.Users), len(fx.Holidays))
	},
}

func init() {
	seedCmd.Flags().StringVarP(&fixturesPath, "fixtures", "f", "fixtures/fixtures.yml", "fixtures file")
}
