package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/lifespan/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("LIFESPAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Source.URL != want.Source.URL || cfg.Source.ColumnIndex != want.Source.ColumnIndex {
		t.Errorf("Unexpected source config: %+v", cfg.Source)
	}
	if cfg.HTTP.Timeout != want.HTTP.Timeout || cfg.Cache.DiskTTL != want.Cache.DiskTTL {
		t.Errorf("Durations not preserved: %+v %+v", cfg.HTTP, cfg.Cache)
	}
	if !cfg.Robots.Respect || !cfg.Cache.Enabled {
		t.Error("Expected robots and cache enabled by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LIFESPAN_HTTP_TIMEOUT", "1m")
	t.Setenv("LIFESPAN_CACHE_ENABLED", "false")
	t.Setenv("LIFESPAN_SOURCE_SELECTOR", "table.sortable")

	cfg, err := loadConfig(newTestViper())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.HTTP.Timeout != time.Minute {
		t.Errorf("Expected 1m timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Enabled {
		t.Error("Expected cache disabled from env")
	}
	if cfg.Source.Selector != "table.sortable" {
		t.Errorf("Expected selector from env, got %q", cfg.Source.Selector)
	}
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "source:\n  column_index: 3\nrate_limiting:\n  requests_per_second: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.ColumnIndex != 3 || cfg.RateLimiting.RequestsPerSecond != 0.5 {
		t.Errorf("Config file values not applied: %+v %+v", cfg.Source, cfg.RateLimiting)
	}
	if cfg.Source.Selector != "table.wikitable" {
		t.Errorf("Expected default selector kept, got %q", cfg.Source.Selector)
	}
}

func TestLoadConfig_VerboseForcesDebug(t *testing.T) {
	v := newTestViper()
	v.Set("output.verbose", true)

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestBindFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("selector", "", "")
	cmd.Flags().String("column", "", "")
	if err := cmd.Flags().Set("selector", "table.custom"); err != nil {
		t.Fatal(err)
	}

	v := newTestViper()
	if err := bindFlags(v, cmd, map[string]string{"selector": "source.selector", "column": "source.column"}); err != nil {
		t.Fatalf("bindFlags: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Selector != "table.custom" {
		t.Errorf("Expected flag to win, got %q", cfg.Source.Selector)
	}
	// Unset flag falls through to the default
	if cfg.Source.Column != model.DefaultConfig().Source.Column {
		t.Errorf("Expected default column, got %q", cfg.Source.Column)
	}

	if err := bindFlags(v, cmd, map[string]string{"missing": "source.url"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lifespan", "config.yaml")
	if err := initConfigFile(path); err != nil {
		t.Fatalf("initConfigFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Lifespan Configuration File") {
		t.Errorf("Missing header comment:\n%s", data)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.HTTP.Timeout != 30*time.Second || cfg.Source.Selector != "table.wikitable" {
		t.Errorf("Unexpected decoded config: %+v", cfg)
	}

	if err := initConfigFile(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg := model.DefaultConfig()
	set, err := loadOverrides(cfg)
	if err != nil {
		t.Fatalf("loadOverrides: %v", err)
	}
	if set.ID() != "us-presidents@2025.1" {
		t.Errorf("Unexpected embedded set: %s", set.ID())
	}

	cfg.Overrides.Path = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := loadOverrides(cfg); err == nil {
		t.Error("Expected error for missing override file")
	}
}

const savedPage = `<html><body><table class="wikitable">
<tr><th>No.</th><th>Portrait</th><th>Name (Birth–Death)</th></tr>
<tr><td>1</td><td></td><td>George Washington (1732–1799)</td></tr>
<tr><td>46</td><td></td><td>Joe Biden (born 1942)</td></tr>
<tr><td>47</td><td></td><td>Donald Trump</td></tr>
</table></body></html>`

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(savedPage), 0644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "out.json")
	csvPath := filepath.Join(dir, "out.csv")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", page, "--json", jsonPath, "--csv", csvPath, "--subject", "Presidents"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := Execute(); err != nil {
		t.Fatalf("parse command: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if report.Subject != "Presidents" || len(report.Records) != 3 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if trump := report.Records[2]; trump.Name != "Donald Trump" || trump.Born == nil || *trump.Born != 1946 {
		t.Errorf("Expected override to fill Trump, got %+v", trump)
	}

	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("Expected CSV output: %v", err)
	}
	if !strings.Contains(out.String(), "3 records from Presidents") {
		t.Errorf("Unexpected summary:\n%s", out.String())
	}
}
