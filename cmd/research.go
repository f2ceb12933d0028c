package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"last30days/internal/ai"
	"last30days/internal/httpclient"
	"last30days/internal/rawinput"
	"last30days/internal/reddit"
	"last30days/internal/research"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// researchCmd runs one aggregation and prints the report.
var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Build a ranked report from fetched Reddit, X and web results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		topic := strings.Join(args, " ")

		var in *rawinput.Bundle
		if path := viper.GetString("research.input"); path != "" {
			b, err := rawinput.ParseFile(path)
			if err != nil {
				return err
			}
			in = b
		}

		files := fileCache(cfg)
		store, closeStore := reportStore(cfg, files)
		defer closeStore()

		limiter := rate.NewLimiter(rate.Limit(cfg.RedditRPS), 1)
		agg := &research.Aggregator{
			Config:   cfg,
			Store:    store,
			Models:   &ai.Selector{Cache: files, Logger: slog.Default()},
			Enricher: reddit.NewEnricher(httpclient.New(limiter, slog.Default())),
			Logger:   slog.Default(),
		}
		r, err := agg.Run(cmd.Context(), research.Request{
			Topic:       topic,
			Days:        viper.GetInt("research.days"),
			Sources:     viper.GetString("research.sources"),
			IncludeWeb:  viper.GetBool("research.include_web"),
			RequireDate: viper.GetBool("research.require_date"),
			Refresh:     viper.GetBool("research.refresh"),
			Enrich:      viper.GetBool("research.enrich"),
			Input:       in,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch emit := viper.GetString("research.emit"); emit {
		case "md", "context":
			fmt.Fprintln(out, r.ContextSnippetMD)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		default:
			return fmt.Errorf("unknown --emit value %q (want json or md)", emit)
		}
		return nil
	},
}

func init() {
	f := researchCmd.Flags()
	f.StringP("input", "i", "", "YAML or JSON file with fetched results (- for stdin)")
	f.Int("days", 30, "window size in days")
	f.String("sources", "auto", "auto, both, reddit, x or web")
	f.Bool("include-web", false, "add web results alongside Reddit/X")
	f.Bool("require-date", false, "drop items without a known date")
	f.Bool("refresh", false, "ignore cached reports")
	f.Bool("enrich", false, "fetch thread details for Reddit items")
	f.String("emit", "json", "output format: json or md")

	for _, name := range []string{"input", "days", "sources", "include-web", "require-date", "refresh", "enrich", "emit"} {
		_ = viper.BindPFlag("research."+strings.ReplaceAll(name, "-", "_"), f.Lookup(name))
	}
	rootCmd.AddCommand(researchCmd)
}
