package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Domenick1991/tripassist/config"
	"github.com/Domenick1991/tripassist/internal/db"
	"github.com/Domenick1991/tripassist/internal/seed"
)

type configLoader func() (*config.Config, error)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the inventory tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			gdb, err := db.OpenGorm(cfg.Database.Driver, cfg.Database.DSN())
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newSeedCmd(load configLoader) *cobra.Command {
	var baseDate string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo customers, flights, seats, bookings and policies",
		Long:  "Migrates the schema and inserts the demo data set. Tables that already hold rows are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			base := time.Now().UTC()
			if baseDate != "" {
				parsed, err := time.Parse("2006-01-02", baseDate)
				if err != nil {
					return fmt.Errorf("invalid --base %q: %w", baseDate, err)
				}
				base = parsed
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			gdb, err := db.OpenGorm(cfg.Database.Driver, cfg.Database.DSN())
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}

			sum, err := seed.Load(cmd.Context(), gdb, base)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers, %d flights, %d seats, %d bookings, %d policies\n",
				sum.Customers, sum.Flights, sum.Seats, sum.Bookings, sum.Policies)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseDate, "base", "", "first schedule day as YYYY-MM-DD (default today)")
	return cmd
}
