// Package main provides the CLI entrypoint for passintel.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/passintel/internal/analyze"
	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/config"
	"github.com/verte-zerg/passintel/internal/history"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/tui"
)

const version = "0.1.0"

var (
	configPath string
	apiURL     string
	apiTimeout time.Duration
	logLevel   string
	logFile    string

	historyPageSize int
	historySort     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "passintel",
		Short:         "Terminal client for the PassIntel password analysis service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&apiURL, "api-url", api.DefaultBaseURL, "analysis service base URL")
	flags.DurationVar(&apiTimeout, "timeout", api.DefaultTimeout, "request timeout")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "JSON log file path")

	rootCmd.Flags().IntVar(&historyPageSize, "page-size", history.DefaultPageSize, "history records per page (1-100)")
	rootCmd.Flags().StringVar(&historySort, "sort", string(model.SortByDate), "initial history sort (date, strength, score)")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDevServerCmd())

	return rootCmd
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "page-size", &historyPageSize, fileCfg.History.PageSize)
	applyStringConfig(cmd, "sort", &historySort, fileCfg.History.Sort)
	cfg.PageSize = historyPageSize
	sortKey, err := model.ParseSortKey(historySort)
	if err != nil {
		return err
	}
	cfg.SortBy = sortKey
	if err := validateConfig(cfg); err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to the file.
	logger, cleanup := config.SetupLogger(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel), nil)
	defer closeLogger(cleanup)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting tui", slog.String("api_url", client.BaseURL()))

	m := tui.NewModel(
		analyze.New(client),
		history.New(client, cfg.PageSize),
		tui.WithLogger(logger),
		tui.WithHistorySort(cfg.SortBy),
	)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveConfig layers flags over environment over the config file over defaults.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg, getenv); err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	applyStringConfig(cmd, "api-url", &apiURL, fileCfg.API.URL)
	if fileCfg.API.Timeout != nil {
		timeout := fileCfg.API.Timeout.Duration
		applyDurationConfig(cmd, "timeout", &apiTimeout, &timeout)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		APIURL:   strings.TrimSpace(apiURL),
		Timeout:  apiTimeout,
		PageSize: history.DefaultPageSize,
		SortBy:   model.SortByDate,
		LogLevel: logLevel,
		LogFile:  logFile,
	}
	return cfg, fileCfg, nil
}

func validateConfig(cfg model.Config) error {
	if _, err := api.ParseBaseURL(cfg.APIURL); err != nil {
		return fmt.Errorf("--api-url: %w", err)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.PageSize < 1 || cfg.PageSize > history.MaxPageSize {
		return fmt.Errorf("--page-size must be between 1 and %d", history.MaxPageSize)
	}
	if _, err := model.ParseSortKey(string(cfg.SortBy)); err != nil {
		return err
	}
	return nil
}

func newClient(cfg model.Config, logger *slog.Logger) (*api.Client, error) {
	client, err := api.New(api.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		UserAgent: "passintel/" + version,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if err := ensureConfigFile(configPath); err != nil {
		return err
	}
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], configPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# passintel configuration
# Uncomment a value to enable it. Environment variables override the file;
# CLI flags override both.

[api]
# url = %q       # Analysis service base URL (%s)
# timeout = %q              # Per-request timeout (%s)

[history]
# page-size = %d               # Records per page (1-%d)
# sort = %q               # Initial sort: date, strength or score

[log]
# level = "info"               # debug, info, warn or error (%s)
# file = %q

[devserver]
# addr = %q      # Listen address of the local stand-in service
# db = %q
# breach-file = ""             # Extra breached passwords, one per line
# rate = %.1f                   # /analyze requests per second (0 disables)
# burst = %d
`,
		api.DefaultBaseURL, config.EnvAPIURL,
		api.DefaultTimeout.String(), config.EnvTimeout,
		history.DefaultPageSize, history.MaxPageSize,
		string(model.SortByDate),
		config.EnvLogLevel,
		config.DefaultLogPath(),
		defaultDevServerAddr,
		config.DefaultDevServerDBPath(),
		defaultDevServerRate,
		defaultDevServerBurst,
	)
}

func closeLogger(cleanup func() error) {
	if err := cleanup(); err != nil {
		logErrf("failed to close log file: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func writeOut(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
