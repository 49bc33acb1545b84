package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Vamsibolem10/Mini-Researcher/internal/api"
	"github.com/Vamsibolem10/Mini-Researcher/internal/config"
	"github.com/Vamsibolem10/Mini-Researcher/internal/events"
	"github.com/Vamsibolem10/Mini-Researcher/internal/remote"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store/memory"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store/postgres"
	"github.com/Vamsibolem10/Mini-Researcher/internal/tui"
	"github.com/Vamsibolem10/Mini-Researcher/internal/workflows"
)

type server interface {
	Start(ctx context.Context, addr string) error
}

var (
	loadConfig   = config.Load
	openPostgres = func(conn string) (*postgres.PostgresStore, error) {
		return postgres.New(conn)
	}
	dialTemporal = client.Dial
	newServer    = func(a *app) server {
		return api.NewServer(a.orch, a.store, a.broker, a.remote, a.cfg, a.logger)
	}
	runProgram = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
	notifyContext = signal.NotifyContext
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries state shared by the root command and its subcommands once
// PersistentPreRunE has run.
type cli struct {
	verbose bool
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "researcher",
		Short: "Mini Researcher - ask a question, answer follow-ups, read the report",
		Long: `Mini Researcher collects a research query, negotiates clarifying follow-up
questions with the research service and shows the final report.

Run without a subcommand for the interactive terminal UI.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger, err := buildLogger(cfg, c.verbose, cmd == cmd.Root())
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(c.serveCmd(), c.askCmd(), c.modesCmd(), c.historyCmd())
	return root
}

// buildLogger returns a production zap logger. The interactive UI owns the
// terminal, so it only logs when LOG_FILE is set.
func buildLogger(cfg config.Config, verbose bool, interactive bool) (*zap.Logger, error) {
	if interactive && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = level
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zcfg.Build()
}

func (c *cli) runTUI(cmd *cobra.Command) error {
	ctx, cancel := notifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	a, err := newApp(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.close()

	model := tui.New(ctx, a.orch, research.ParseMode(c.cfg.DefaultMode), c.logger)
	return runProgram(model)
}

// app is the wired session stack shared by every front-end.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   store.Store
	broker  *events.Broker
	remote  *remote.Client
	orch    *session.Orchestrator
	closers []func()
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, broker: events.NewBroker()}

	if cfg.PostgresURL != "" {
		pg, err := openPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = pg
		a.closers = append(a.closers, func() { _ = pg.Close() })
	} else {
		a.store = memory.New()
	}

	a.remote = remote.NewClient(remote.Config{BaseURL: cfg.ServiceURL, Logger: logger})

	var submitter session.ResearchSubmitter = a.remote
	if cfg.Runner == config.RunnerTemporal {
		temporalClient, err := dialTemporal(client.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("dial temporal: %w", err)
		}
		if temporalClient != nil {
			a.closers = append(a.closers, temporalClient.Close)
		}
		submitter = workflows.NewSubmitter(temporalClient, cfg.TemporalTaskQueue)
	}

	a.orch = session.New(a.remote, submitter, session.Options{
		Broker:          a.broker,
		Store:           a.store,
		Logger:          logger,
		FollowupTimeout: cfg.FollowupTimeout,
		ResearchTimeout: cfg.ResearchTimeout,
	})
	logger.Debug("session ready",
		zap.String("session_id", a.orch.ID()),
		zap.String("runner", cfg.Runner),
		zap.String("service_url", a.remote.BaseURL()),
	)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
