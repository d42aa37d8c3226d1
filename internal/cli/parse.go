package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/lifespan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Build the lifespan table from a saved HTML page",
	Long: `Parse runs extraction and normalization on an HTML file already on
disk. No network access is made and the page cache is not touched.

Example:
  lifespan parse presidents.html
  lifespan parse presidents.html --source-url https://en.wikipedia.org/wiki/List_of_presidents_of_the_United_States --csv out.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	addOutputFlags(parseCmd)

	parseCmd.Flags().String("selector", "", "CSS selector of the table")
	parseCmd.Flags().String("column", "", "header text of the name column")
	parseCmd.Flags().String("overrides", "", "override data file (default: embedded set)")
	parseCmd.Flags().String("source-url", "", "URL the page was saved from (recorded in the report)")
	parseCmd.Flags().String("subject", "", "subject recorded in the report")
}

// parseFlagKeys maps parse flags to config keys
var parseFlagKeys = map[string]string{
	"selector":   "source.selector",
	"column":     "source.column",
	"overrides":  "overrides.path",
	"source-url": "source.url",
	"subject":    "source.subject",
}

func runParse(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, parseFlagKeys); err != nil {
		return err
	}
	if err := bindFlags(v, cmd, outputFlagKeys); err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = false

	log := newLogger(cfg)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	overrides, err := loadOverrides(cfg)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, overrides, log)
	report, err := p.Process(string(data))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	return writeOutputs(cmd, cfg, report, log)
}
