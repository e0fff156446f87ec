package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/passintel/internal/analyze"
	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/config"
	"github.com/verte-zerg/passintel/internal/devserver"
	"github.com/verte-zerg/passintel/internal/history"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
	"github.com/verte-zerg/passintel/internal/render"
)

const (
	defaultDevServerAddr  = devserver.DefaultAddr
	defaultDevServerRate  = devserver.DefaultRate
	defaultDevServerBurst = devserver.DefaultBurst

	healthFailureMessage = "The analysis service is unreachable."
)

var (
	analyzeJSON bool

	historyPage    int
	historyCmdSize int
	historyCmdSort string

	devAddr       string
	devDB         string
	devBreachFile string
	devRate       float64
	devBurst      int
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one password read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	logger, cleanup := config.SetupLogger(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel), cmd.ErrOrStderr())
	defer closeLogger(cleanup)

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	return analyzeAndPrint(analyze.New(client), password, cmd.OutOrStdout())
}

func analyzeAndPrint(ctrl *analyze.Controller, password string, out io.Writer) error {
	state := ctrl.Run(password)
	switch state.Phase() {
	case reqstate.Success:
		result, _ := state.Value()
		if analyzeJSON {
			return writeJSON(out, result)
		}
		return render.WriteResult(out, result)
	case reqstate.Failed:
		msg, _ := state.Message()
		return errors.New(msg)
	default:
		return errors.New("password must not be empty")
	}
}

// readPassword reads without echo from a terminal, otherwise one line.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(prompt, "Password: "); err != nil {
			return "", err
		}
		data, err := term.ReadPassword(int(f.Fd()))
		if _, perr := fmt.Fprintln(prompt); perr != nil {
			// Best-effort newline after the hidden input.
			_ = perr
		}
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print one page of analysis history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyPage, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&historyCmdSize, "page-size", history.DefaultPageSize, "records per page (1-100)")
	cmd.Flags().StringVar(&historyCmdSort, "sort", string(model.SortByDate), "sort order (date, strength, score)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "page-size", &historyCmdSize, fileCfg.History.PageSize)
	applyStringConfig(cmd, "sort", &historyCmdSort, fileCfg.History.Sort)
	cfg.PageSize = historyCmdSize
	sortKey, err := model.ParseSortKey(historyCmdSort)
	if err != nil {
		return err
	}
	cfg.SortBy = sortKey
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if historyPage < 1 {
		return fmt.Errorf("--page must be >= 1")
	}
	logger, cleanup := config.SetupLogger(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel), cmd.ErrOrStderr())
	defer closeLogger(cleanup)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	return historyAndPrint(history.New(client, cfg.PageSize), historyPage, cfg.SortBy, cmd.OutOrStdout())
}

func historyAndPrint(ctrl *history.Controller, page int, key model.SortKey, out io.Writer) error {
	state := ctrl.Settle(ctrl.InitAt(page, key))
	if msg, failed := state.Message(); failed {
		return errors.New(msg)
	}
	return render.WriteHistory(out, ctrl.Records(), ctrl.Page(), ctrl.PageSize(), ctrl.TotalPages())
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Args:  cobra.NoArgs,
		RunE:  runHealthCmd,
	}
}

func runHealthCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	logger, cleanup := config.SetupLogger(cfg.LogFile, config.ParseLogLevel(cfg.LogLevel), cmd.ErrOrStderr())
	defer closeLogger(cleanup)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	health, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %s", client.BaseURL(), api.Message(err, healthFailureMessage))
	}
	return writeOut(cmd.OutOrStdout(), "%s: %s (%s)\n", client.BaseURL(), health.Message, health.Status)
}

func newDevServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local stand-in analysis service",
		Args:  cobra.NoArgs,
		RunE:  runDevServerCmd,
	}
	cmd.Flags().StringVar(&devAddr, "addr", defaultDevServerAddr, "listen address")
	cmd.Flags().StringVar(&devDB, "db", config.DefaultDevServerDBPath(), "SQLite database path")
	cmd.Flags().StringVar(&devBreachFile, "breach-file", "", "extra breached passwords, one per line")
	cmd.Flags().Float64Var(&devRate, "rate", defaultDevServerRate, "/analyze requests per second (0 disables limiting)")
	cmd.Flags().IntVar(&devBurst, "burst", defaultDevServerBurst, "/analyze burst size")
	return cmd
}

func runDevServerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg, os.Getenv); err != nil {
		return err
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "addr", &devAddr, fileCfg.DevServer.Addr)
	applyStringConfig(cmd, "db", &devDB, fileCfg.DevServer.DB)
	applyStringConfig(cmd, "breach-file", &devBreachFile, fileCfg.DevServer.BreachFile)
	applyFloatConfig(cmd, "rate", &devRate, fileCfg.DevServer.Rate)
	applyIntConfig(cmd, "burst", &devBurst, fileCfg.DevServer.Burst)
	if devRate < 0 {
		return fmt.Errorf("--rate must be >= 0")
	}

	logger, cleanup := config.SetupLogger(logFile, config.ParseLogLevel(logLevel), cmd.ErrOrStderr())
	defer closeLogger(cleanup)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = devserver.Run(ctx, devserver.Config{
		Addr:       devAddr,
		DBPath:     devDB,
		BreachFile: devBreachFile,
		Rate:       devRate,
		Burst:      devBurst,
	}, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("devserver stopped", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
