package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskrank/riskrank/internal/cache"
	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/market"
)

func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local data cache",
	}

	openStore := func() (*cache.Store, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		return cache.NewStore(cfg.CacheDir)
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			removed, err := store.Purge()
			if err != nil {
				return err
			}
			fmt.Printf("cache purged (%d entries)\n", removed)
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh-financials [code]",
		Short: "Drop cached statements so the next analysis refetches them",
		Long: `Removes the financial statement entries from the cache, for one code
or for everything when no code is given. Run after a new reporting
period is published; price and classification caches are left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			removed := 0
			if len(args) == 1 {
				code, err := market.NormalizeCode(args[0])
				if err != nil {
					return err
				}
				for _, prefix := range []string{"fin_main_" + code, "fin_trend_" + code} {
					n, err := store.DeletePrefix(prefix)
					if err != nil {
						return err
					}
					removed += n
				}
			} else {
				removed, err = store.DeletePrefix("fin_")
				if err != nil {
					return err
				}
			}
			fmt.Printf("financial statement cache dropped (%d entries)\n", removed)
			return nil
		},
	}

	dropMacroCmd := &cobra.Command{
		Use:   "drop-macro",
		Short: "Drop the cached market-environment snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			removed, err := store.DeletePrefix("macro")
			if err != nil {
				return err
			}
			fmt.Printf("macro cache dropped (%d entries)\n", removed)
			return nil
		},
	}

	cmd.AddCommand(purgeCmd, refreshCmd, dropMacroCmd)
	return cmd
}
