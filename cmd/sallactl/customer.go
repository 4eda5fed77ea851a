package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	go_json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/yousefm/sallasync/internal/config"
	"github.com/yousefm/sallasync/internal/storage"
)

func customerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "customer <external-customer-id>",
		Short: "Print the reconciled record for an external customer id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			externalID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid external customer id %q: %w", args[0], err)
			}

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rec, err := store.Get(cmd.Context(), externalID)
			if err != nil {
				return err
			}

			enc := go_json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.CustomerStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return storage.NewPostgresStore(pool, cfg.Salla.DefaultCurrency), nil
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		return storage.NewSQLiteStore(db, cfg.Salla.DefaultCurrency), nil
	default:
		return nil, fmt.Errorf("store driver %q has no durable records to inspect", cfg.Store.Driver)
	}
}
