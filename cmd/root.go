package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/config"
	"github.com/greenbelt-labs/ejatlas/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ejatlas",
	Short: "Environmental justice analysis over historic redlining grades",
	Long:  "Joins HOLC redlining grade polygons with environmental indicator areas and species observation points, then summarizes both by grade.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the configured store backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
