package cmd

import (
	"fmt"
	"log/slog"

	"last30days/internal/ai"
	"last30days/internal/config"

	"github.com/spf13/cobra"
)

// modelsCmd prints the model each configured provider would use.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the selected model per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		sel := (&ai.Selector{Cache: fileCache(cfg), Logger: slog.Default()}).Models(cmd.Context(), cfg, nil)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sources: %s (missing keys: %s)\n", config.AvailableSources(cfg), config.MissingKeys(cfg))
		fmt.Fprintf(out, "openai:  %s\n", orNone(sel.OpenAI))
		fmt.Fprintf(out, "xai:     %s\n", orNone(sel.XAI))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(no key)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
