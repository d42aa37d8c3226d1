package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/lifespan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fetched-page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached pages",
	Long: `Clear removes every cached page, or only the page given with --url.

Example:
  lifespan cache clear
  lifespan cache clear --url https://en.wikipedia.org/wiki/List_of_presidents_of_the_United_States`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if !cfg.Cache.Enabled {
			fmt.Fprintf(os.Stderr, "Cache is disabled, nothing to clear\n")
			return nil
		}

		p := pipeline.NewPipeline(cfg, nil, newLogger(cfg))

		locator, _ := cmd.Flags().GetString("url")
		if locator != "" {
			if err := p.InvalidatePage(locator); err != nil {
				return fmt.Errorf("invalidate %s: %w", locator, err)
			}
			fmt.Fprintf(os.Stderr, "✓ Dropped cached page: %s\n", locator)
			return nil
		}

		if err := p.ClearCache(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Cleared cache: %s\n", cfg.Cache.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().String("url", "", "drop only this page")
}
