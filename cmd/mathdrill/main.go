// Package main provides the CLI entrypoint for mathdrill.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mathdrill/internal/api"
	"github.com/verte-zerg/mathdrill/internal/badges"
	"github.com/verte-zerg/mathdrill/internal/config"
	"github.com/verte-zerg/mathdrill/internal/engine"
	"github.com/verte-zerg/mathdrill/internal/logging"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/stats"
	"github.com/verte-zerg/mathdrill/internal/statsui"
	"github.com/verte-zerg/mathdrill/internal/store"
	"github.com/verte-zerg/mathdrill/internal/tui"
)

const (
	defaultMode       = string(model.ModeKumon)
	defaultDifficulty = string(model.Medium)
	defaultTimer      = 0
	defaultWindow     = stats.DefaultWindowDays
	defaultAddr       = "127.0.0.1:8787"
	defaultLogLevel   = "info"
	plainWidthBackup  = 80
)

var defaultOps = []string{"+", "-", "*", "/"}

var (
	dbPath   string
	logLevel string
	logFile  string

	practiceMode       string
	practiceDifficulty string
	practiceOps        []string
	practiceTimer      int
	practiceStart      bool

	statsPlain  bool
	statsWindow int

	serveAddr   string
	serveWindow int

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mathdrill",
		Short:         "TUI arithmetic drill trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $"+config.DBEnv+" or XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path, '-' for stderr (default: XDG data dir)")

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "session mode (kumon, endless, buzzer)")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty (easy, medium, hard)")
	rootCmd.Flags().StringSliceVar(&practiceOps, "ops", defaultOps, "operations to practice (+,-,*,/)")
	rootCmd.Flags().IntVar(&practiceTimer, "timer", defaultTimer, "countdown in seconds, 0 for none")
	rootCmd.Flags().BoolVar(&practiceStart, "start", false, "skip the setup screen")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newBadgesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// app bundles the storage stack shared by the subcommands.
type app struct {
	cfg      config.FileConfig
	log      *slog.Logger
	store    *store.Store
	repo     *store.Repository
	badges   *badges.Evaluator
	closeLog func() error
}

func openApp(cmd *cobra.Command, fallbackLogFile string) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	if logFile == "" {
		logFile = fallbackLogFile
	}
	logger, closeLog, err := logging.Setup(logLevel, logFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		if cerr := closeLog(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	repo := store.NewRepository(st, logger)
	return &app{
		cfg:      fileCfg,
		log:      logger,
		store:    st,
		repo:     repo,
		badges:   badges.NewEvaluator(repo, logger),
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if cerr := a.closeLog(); cerr != nil {
		// Best-effort close of the log file.
		_ = cerr
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "mode", &practiceMode, a.cfg.Practice.Mode)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, a.cfg.Practice.Difficulty)
	applyStringSliceConfig(cmd, "ops", &practiceOps, a.cfg.Practice.Ops)
	applyIntConfig(cmd, "timer", &practiceTimer, a.cfg.Practice.Timer)

	cfg, err := sessionConfig(practiceMode, practiceDifficulty, practiceOps, practiceTimer)
	if err != nil {
		return err
	}

	orch := engine.New(a.repo, a.badges, engine.WithLogger(a.log))
	defer orch.Close()

	m := tui.NewModel(orch, cfg, practiceStart)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// sessionConfig parses CLI values into a normalized session configuration.
func sessionConfig(mode, difficulty string, ops []string, timer int) (model.SessionConfig, error) {
	parsed := make([]model.Operator, 0, len(ops))
	for _, raw := range ops {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		op, err := model.ParseOperator(raw)
		if err != nil {
			return model.SessionConfig{}, fmt.Errorf("invalid --ops value: %w", err)
		}
		parsed = append(parsed, op)
	}
	if timer < 0 {
		return model.SessionConfig{}, fmt.Errorf("--timer must be >= 0")
	}
	cfg, err := engine.NormalizeConfig(model.SessionConfig{
		Mode:       model.Mode(strings.ToLower(mode)),
		Difficulty: model.Difficulty(strings.ToLower(difficulty)),
		Operators:  parsed,
		TimerSec:   timer,
	})
	if err != nil {
		return model.SessionConfig{}, fmt.Errorf("invalid practice settings: %w", err)
	}
	return cfg, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the dashboard")
	cmd.Flags().IntVar(&statsWindow, "window", defaultWindow, "chart window in days")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	applyIntConfig(cmd, "window", &statsWindow, a.cfg.Dashboard.Window)
	if statsWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}

	if statsPlain {
		out := cmd.OutOrStdout()
		width, color := outputWidth(out)
		report := stats.BuildReport(cmd.Context(), a.repo, time.Now(), statsWindow)
		if err := stats.RenderReport(out, report, width, color); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	m := statsui.NewModel(a.repo, a.badges, statsui.Config{WindowDays: statsWindow})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func outputWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return plainWidthBackup, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return plainWidthBackup, true
	}
	return width, true
}

func newBadgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List badges and their unlock state",
		Args:  cobra.NoArgs,
		RunE:  runBadgesCmd,
	}
}

func runBadgesCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()
	return writeBadges(cmd.OutOrStdout(), a.badges.Unlocked(cmd.Context()))
}

func writeBadges(w io.Writer, unlockedIDs []string) error {
	unlocked := make(map[string]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = true
	}
	catalog := badges.Catalog()
	for _, def := range catalog {
		mark := "[ ]"
		if unlocked[def.ID] {
			mark = "[x]"
		}
		if _, err := fmt.Fprintf(w, "%s %s %s - %s\n", mark, def.Icon, def.Name, def.Description); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "\n%d of %d unlocked\n", len(unlocked), len(catalog)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stats dashboard as JSON",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().IntVar(&serveWindow, "window", defaultWindow, "default dashboard window in days")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, "-")
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "addr", &serveAddr, a.cfg.Server.Addr)
	applyIntConfig(cmd, "window", &serveWindow, a.cfg.Dashboard.Window)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(a.repo, a.badges, serveWindow, nil, a.log)
	return api.Serve(ctx, serveAddr, api.NewRouter(handler), a.log)
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
	path := config.DefaultConfigPath()
	if _, err := config.EnsureFile(path); err != nil {
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored stats and badges",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		logErrln("This deletes every daily record and badge. Re-run with --yes to confirm.")
		return fmt.Errorf("reset not confirmed")
	}
	a, err := openApp(cmd, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	a.log.Info("stats reset")
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "All stats and badges deleted."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
