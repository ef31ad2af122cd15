// Package terminal is the flownav command line.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flow_navigator/application/agent"
	"flow_navigator/application/assertion"
	"flow_navigator/application/executor"
	"flow_navigator/application/protocol"
	"flow_navigator/application/snapshot"
	"flow_navigator/domain/entities"
	"flow_navigator/infrastructure/ai"
	"flow_navigator/infrastructure/browser"
	"flow_navigator/infrastructure/config"
	"flow_navigator/infrastructure/logging"
	"flow_navigator/infrastructure/security"
	"flow_navigator/infrastructure/storage"
)

// app carries what PersistentPreRunE prepared for the subcommands
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *logrus.Logger
}

// Execute - runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// NewRootCmd - builds the flownav command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "flownav",
		Short:         "Walks a numbered user story through a live web page",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./flownav.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logger.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newRunCmd(a), newSnapshotCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		url      string
		goal     string
		goalFile string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a guided flow against --url",
		RunE: func(cmd *cobra.Command, args []string) error {
			term := NewTerminalInterface(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())

			goalText, err := resolveGoal(term, goal, goalFile)
			if err != nil {
				return err
			}

			ag, err := a.buildAgent(cmd.Context())
			if err != nil {
				return err
			}

			result, runErr := ag.Run(cmd.Context(), url, goalText)
			if err := term.PrintResult(result, runErr); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "start URL")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "goal text")
	cmd.Flags().StringVar(&goalFile, "goal-file", "", "read the goal from a file")
	cmd.Flags().String("provider", "", "oracle provider (gpt, claude, gemini)")
	cmd.Flags().String("model", "", "oracle model")
	cmd.Flags().Bool("headless", false, "run the browser headless")
	cmd.Flags().Int("max-steps", 0, "step ceiling")
	_ = cmd.MarkFlagRequired("url")
	cmd.MarkFlagsMutuallyExclusive("goal", "goal-file")

	_ = a.v.BindPFlag("oracle.provider", cmd.Flags().Lookup("provider"))
	_ = a.v.BindPFlag("oracle.model", cmd.Flags().Lookup("model"))
	_ = a.v.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
	_ = a.v.BindPFlag("flow.max_steps", cmd.Flags().Lookup("max-steps"))

	return cmd
}

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		url  string
		file string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the element snapshot of a saved HTML file or a live page",
		RunE: func(cmd *cobra.Command, args []string) error {
			term := NewTerminalInterface(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			snapper := snapshot.NewSnapshotter(a.snapshotSettings(), a.logger)

			var (
				snap entities.PageSnapshot
				err  error
			)
			if file != "" {
				snap, err = snapshotFile(snapper, file)
			} else {
				snap, err = a.snapshotURL(cmd.Context(), snapper, url)
			}
			if err != nil {
				return err
			}
			return term.PrintJSON(snap)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "live page to capture")
	cmd.Flags().StringVarP(&file, "file", "f", "", "saved HTML file to parse")
	cmd.MarkFlagsOneRequired("url", "file")
	cmd.MarkFlagsMutuallyExclusive("url", "file")

	return cmd
}

func resolveGoal(term *TerminalInterface, goal, goalFile string) (string, error) {
	switch {
	case goal != "":
		return goal, nil
	case goalFile != "":
		data, err := os.ReadFile(goalFile)
		if err != nil {
			return "", fmt.Errorf("failed to read goal file: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", ErrNoGoal
		}
		return string(data), nil
	default:
		return term.ReadGoal()
	}
}

func snapshotFile(snapper *snapshot.Snapshotter, path string) (entities.PageSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return entities.PageSnapshot{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	root, err := snapshot.ParseHTML(f)
	if err != nil {
		return entities.PageSnapshot{}, err
	}

	snap := entities.PageSnapshot{URL: path, Elements: []entities.ElementRecord{}}
	if root != nil {
		snap.Elements = snapper.Collect(root)
	}
	return snap, nil
}

func (a *app) snapshotURL(ctx context.Context, snapper *snapshot.Snapshotter, url string) (entities.PageSnapshot, error) {
	session, err := browser.NewLauncher(a.browserSettings(), a.logger).Launch(ctx)
	if err != nil {
		return entities.PageSnapshot{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(ctx, url, a.cfg.Flow.NavigationTimeout); err != nil {
		return entities.PageSnapshot{}, fmt.Errorf("failed to open %s: %w", url, err)
	}
	return snapper.Capture(ctx, page), nil
}

// buildAgent - wires every component from the loaded config
func (a *app) buildAgent(ctx context.Context) (*agent.Agent, error) {
	if a.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	cfg := a.cfg

	oracle, err := ai.NewOracle(ctx, ai.Settings{
		Provider:          cfg.Oracle.Provider,
		Model:             cfg.Oracle.Model,
		APIKey:            cfg.Oracle.APIKey,
		BaseURL:           cfg.Oracle.BaseURL,
		Temperature:       cfg.Oracle.Temperature,
		MaxTokens:         cfg.Oracle.MaxTokens,
		Timeout:           cfg.Oracle.Timeout,
		RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oracle: %w", err)
	}

	evaluator := assertion.NewEvaluator(a.logger)
	exec := executor.NewExecutor(executor.Settings{
		ActionTimeout:     cfg.Flow.ActionTimeout,
		NavigationTimeout: cfg.Flow.NavigationTimeout,
		Attempts:          cfg.Flow.RetryAttempts,
		RetryDelay:        cfg.Flow.RetryDelay,
	}, evaluator, a.logger)

	return agent.NewAgent(agent.Settings{
		MaxSteps:          cfg.Flow.MaxSteps,
		StepDelay:         cfg.Flow.StepDelay,
		NavigationTimeout: cfg.Flow.NavigationTimeout,
	}, agent.Dependencies{
		Launcher:    browser.NewLauncher(a.browserSettings(), a.logger),
		Snapshotter: snapshot.NewSnapshotter(a.snapshotSettings(), a.logger),
		Planner:     protocol.NewPlanner(oracle, cfg.Oracle.Timeout, a.logger),
		Executor:    exec,
		Guard:       security.NewSecurityLayer(a.logger),
		Store: storage.NewArtifactStore(storage.Settings{
			Dir:            cfg.Output.Dir,
			DOMHistoryFile: cfg.Output.DOMHistoryFile,
			ActionLogFile:  cfg.Output.ActionLogFile,
		}),
	}, a.logger), nil
}

func (a *app) browserSettings() browser.Settings {
	b := a.cfg.Browser
	return browser.Settings{
		Headless:       b.Headless,
		SlowMo:         b.SlowMo,
		Locale:         b.Locale,
		Permissions:    b.Permissions,
		ViewportWidth:  b.ViewportWidth,
		ViewportHeight: b.ViewportHeight,
		Args:           b.Args,
	}
}

func (a *app) snapshotSettings() snapshot.Settings {
	return snapshot.Settings{
		NetworkIdleTimeout: a.cfg.Flow.NetworkIdleTimeout,
		TextLimit:          a.cfg.Flow.TextLimit,
	}
}
