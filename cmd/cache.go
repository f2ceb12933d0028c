package cmd

import (
	"fmt"

	"last30days/internal/redisclient"
	"last30days/internal/storage"

	"github.com/spf13/cobra"
)

// cacheCmd groups report cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Report cache utilities",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached reports, keeping the model selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		files := fileCache(cfg)
		n, err := files.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached reports from %s\n", n, files.Root())

		if redisclient.Enabled(cfg.Redis) {
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			m, err := storage.NewRedisStore(rdb, cfg.CacheTTL).Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d reports from redis\n", m)
		}
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), fileCache(GetConfig()).Root())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
