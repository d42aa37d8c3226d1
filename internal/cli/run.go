package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/lifespan/internal/logger"
	"github.com/ppiankov/lifespan/internal/model"
	"github.com/ppiankov/lifespan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	refresh    bool
	runTimeout time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Scrape the list page and build the lifespan table",
	Long: `Run fetches the configured list page (or the URL given as argument),
extracts the name column of the first matching table and builds the
final table of birth year, death year and age at death.

Fetched pages are cached; --refresh drops the cached copy first.

Example:
  lifespan run
  lifespan run --refresh --csv presidents.csv --md presidents.md
  lifespan run https://en.wikipedia.org/wiki/List_of_presidents_of_the_United_States --plot plot.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached page and fetch it again")
	runCmd.Flags().DurationVar(&runTimeout, "run-timeout", 2*time.Minute, "overall run timeout including retries")

	addOutputFlags(runCmd)

	// Source flags
	runCmd.Flags().String("selector", "", "CSS selector of the table")
	runCmd.Flags().String("column", "", "header text of the name column")
	runCmd.Flags().String("overrides", "", "override data file (default: embedded set)")

	// HTTP flags
	runCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	runCmd.Flags().String("ua", "", "HTTP User-Agent")
	runCmd.Flags().Int64("max-bytes", 0, "max response bytes to read")
	runCmd.Flags().Bool("insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	runCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	runCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	runCmd.Flags().String("no-proxy", "", "hosts that bypass the proxy (overrides NO_PROXY env var)")
	runCmd.Flags().Bool("no-cache", false, "disable cache (force fresh fetch)")
	runCmd.Flags().Bool("ignore-robots", false, "do not consult robots.txt")
}

// runFlagKeys maps run flags to config keys
var runFlagKeys = map[string]string{
	"selector":    "source.selector",
	"column":      "source.column",
	"overrides":   "overrides.path",
	"timeout":     "http.timeout",
	"ua":          "http.user_agent",
	"max-bytes":   "http.max_body_bytes",
	"insecure":    "http.insecure_tls",
	"http-proxy":  "http.http_proxy",
	"https-proxy": "http.https_proxy",
	"no-proxy":    "http.no_proxy",
}

func runRun(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, runFlagKeys); err != nil {
		return err
	}
	if err := bindFlags(v, cmd, outputFlagKeys); err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Source.URL = args[0]
		cfg.Source.Subject = ""
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if ignore, _ := cmd.Flags().GetBool("ignore-robots"); ignore {
		cfg.Robots.Respect = false
	}

	log := newLogger(cfg)

	overrides, err := loadOverrides(cfg)
	if err != nil {
		return err
	}
	log.Debug("overrides loaded", "set", overrides.ID(), "records", len(overrides.Records))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, overrides, log)
	report, err := p.Run(ctx, pipeline.RunOptions{Refresh: refresh})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	return writeOutputs(cmd, cfg, report, log)
}

// outputFlagKeys maps output flags to config keys
var outputFlagKeys = map[string]string{
	"json": "output.json",
	"csv":  "output.csv",
	"md":   "output.markdown",
	"plot": "output.plot",
}

func addOutputFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig().Output
	cmd.Flags().String("json", defaults.JSON, "output JSON path (empty to skip)")
	cmd.Flags().String("csv", defaults.CSV, "output CSV path (optional)")
	cmd.Flags().String("md", defaults.Markdown, "output Markdown path (optional)")
	cmd.Flags().String("plot", defaults.Plot, "output timeline series JSON path (optional)")
}

// writeOutputs renders every configured artifact and prints the summary
func writeOutputs(cmd *cobra.Command, cfg *model.Config, report *model.Report, log *logger.Logger) error {
	renderer := pipeline.NewRenderer(cmd.OutOrStdout())
	out := cfg.Output

	if out.JSON != "" {
		if err := renderer.RenderJSON(report, out.JSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", out.JSON)
	}
	if out.CSV != "" {
		if err := renderer.RenderCSV(report, out.CSV); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ CSV table: %s\n", out.CSV)
	}
	if out.Markdown != "" {
		if err := renderer.RenderMarkdown(report, out.Markdown); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown table: %s\n", out.Markdown)
	}
	if out.Plot != "" {
		points := pipeline.PlotSeries(report.Records, report.FetchedAt.Year())
		if err := renderer.RenderPlot(points, out.Plot); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		log.Debug("plot series written", "points", len(points), "path", out.Plot)
		fmt.Fprintf(os.Stderr, "✓ Plot series: %s\n", out.Plot)
	}

	renderer.RenderSummary(report)
	return nil
}
