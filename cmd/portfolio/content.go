package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/portfolio/internal/config"
	"github.com/dukerupert/portfolio/internal/model"
	"github.com/dukerupert/portfolio/internal/store"
)

var contentTier string

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Print the seeded content catalog as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return printContent(cmd, cfg, contentTier)
	},
}

func init() {
	contentCmd.Flags().StringVar(&contentTier, "tier", "", "only show items readable at this tier (basic, professional, enterprise)")
}

func printContent(cmd *cobra.Command, cfg *config.Config, tier string) error {
	if tier != "" {
		if _, ok := model.ParseTier(tier); !ok {
			return fmt.Errorf("invalid tier %q", tier)
		}
	}

	st, err := store.Open(cfg.StoreDriver, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := store.Seed(ctx, st); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	var items []model.ContentItem
	if tier == "" {
		items, err = st.ListContent(ctx)
	} else {
		items, err = st.ListContentByTier(ctx, tier)
	}
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
