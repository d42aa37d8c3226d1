package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/lifespan/internal/normalize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// overridesCmd represents the overrides command
var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Inspect override data",
	Long: `Override data supplies records the scrape cannot capture reliably.
The set is a versioned YAML file; every report records the name@version
it was built with.`,
}

var overridesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active override set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		set, err := loadOverrides(cfg)
		if err != nil {
			return err
		}

		source := cfg.Overrides.Path
		if source == "" {
			source = "embedded"
		}
		fmt.Fprintf(os.Stderr, "Override set %s (%s)\n\n", set.ID(), source)

		data, err := yaml.Marshal(set)
		if err != nil {
			return fmt.Errorf("error marshaling overrides: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var overridesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an override file without running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := normalize.LoadOverrides(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d records, %d allowed, %d denied\n",
			set.ID(), len(set.Records), len(set.Allow), len(set.Deny))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
	overridesCmd.AddCommand(overridesShowCmd)
	overridesCmd.AddCommand(overridesValidateCmd)
}
