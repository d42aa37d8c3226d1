package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/lifespan/internal/logger"
	"github.com/ppiankov/lifespan/internal/model"
	"github.com/ppiankov/lifespan/internal/normalize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lifespan",
	Short: "Lifespan - birth and death years from a list page",
	Long: `Lifespan scrapes a list page (by default the Wikipedia list of US
presidents), splits every name cell into a name and its life dates, and
builds a table of birth year, death year and age at death.

Subjects the page cannot describe reliably are filled from a versioned
override file. Rows that cannot be parsed are reported, never guessed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of lifespan.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lifespan %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.lifespan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (forces debug logging)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".lifespan"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// LIFESPAN_HTTP_TIMEOUT maps to http.timeout
	viper.SetEnvPrefix("LIFESPAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars reach Unmarshal
func setDefaults(v *viper.Viper, cfg *model.Config) {
	defaults := map[string]any{
		"source.url":                        cfg.Source.URL,
		"source.subject":                    cfg.Source.Subject,
		"source.selector":                   cfg.Source.Selector,
		"source.column":                     cfg.Source.Column,
		"source.column_index":               cfg.Source.ColumnIndex,
		"source.header_label":               cfg.Source.HeaderLabel,
		"http.timeout":                      cfg.HTTP.Timeout,
		"http.user_agent":                   cfg.HTTP.UserAgent,
		"http.max_body_bytes":               cfg.HTTP.MaxBodyBytes,
		"http.insecure_tls":                 cfg.HTTP.InsecureTLS,
		"http.http_proxy":                   cfg.HTTP.HTTPProxy,
		"http.https_proxy":                  cfg.HTTP.HTTPSProxy,
		"http.no_proxy":                     cfg.HTTP.NoProxy,
		"cache.enabled":                     cfg.Cache.Enabled,
		"cache.dir":                         cfg.Cache.Dir,
		"cache.memory_ttl":                  cfg.Cache.MemoryTTL,
		"cache.disk_ttl":                    cfg.Cache.DiskTTL,
		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,
		"robots.respect":                    cfg.Robots.Respect,
		"overrides.path":                    cfg.Overrides.Path,
		"output.json":                       cfg.Output.JSON,
		"output.csv":                        cfg.Output.CSV,
		"output.markdown":                   cfg.Output.Markdown,
		"output.plot":                       cfg.Output.Plot,
		"output.verbose":                    cfg.Output.Verbose,
		"logging.level":                     cfg.Logging.Level,
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Output.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// bindFlags binds command-local flags to config keys. Called from RunE so
// commands sharing a flag name do not overwrite each other's binding.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// loadOverrides reads the configured override file, or the embedded set
func loadOverrides(cfg *model.Config) (*normalize.OverrideSet, error) {
	if cfg.Overrides.Path == "" {
		return normalize.DefaultOverrides()
	}
	return normalize.LoadOverrides(cfg.Overrides.Path)
}

func newLogger(cfg *model.Config) *logger.Logger {
	return logger.New(cfg.Logging.Level)
}
