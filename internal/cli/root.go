package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/artpar/querybench/internal/app"
	"github.com/artpar/querybench/internal/config"
	"github.com/artpar/querybench/internal/history/sqlite"
	"github.com/artpar/querybench/internal/logging"
	"github.com/artpar/querybench/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configFile string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "querybench",
		Short: "querybench - a terminal workbench for JSON APIs",
		Long: "querybench shows one panel per API route. Pick a method, load a preset payload,\n" +
			"edit it as a tree and send it; the response border is coloured by its status.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Settings file (yaml, json or toml)")
	flags.String("routes", "", "Routes file (defaults to the built-in shop routes)")
	flags.String("base-url", "", "API base URL (default "+config.DefaultAPIURL+")")
	flags.Duration("timeout", 0, "Per-request timeout, 0 waits indefinitely")
	flags.String("log-file", "", "Append logs to this file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewRoutesCommand(opts))
	cmd.AddCommand(NewVersionCommand(version))

	return cmd
}

// session is the application wiring shared by the commands.
type session struct {
	settings *config.Settings
	app      *app.App
	logFile  io.Closer
}

// openSession resolves settings, opens the log and builds the app.
// fallbackLog receives logs when no log file is configured; nil discards them.
func openSession(cmd *cobra.Command, opts *rootOptions, fallbackLog io.Writer, appOpts ...app.Option) (*session, error) {
	settings, err := config.LoadSettings(opts.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	routes, err := config.LoadRoutes(settings.RoutesFile)
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings}
	output := fallbackLog
	file, err := logging.OpenFile(settings.Log.File)
	if err != nil {
		return nil, err
	}
	if file != nil {
		s.logFile = file
		output = file
	}
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(settings.Log.Level),
		Format: logging.ParseFormat(settings.Log.Format),
		Output: output,
	})

	all := append([]app.Option{
		app.WithConfig(app.Config{BaseURL: settings.APIURL, Timeout: settings.Timeout}),
		app.WithRoutes(routes),
		app.WithLogger(logger),
	}, appOpts...)
	s.app = app.New(all...)

	logger.Debug("session started",
		"base_url", settings.APIURL,
		"routes", len(routes),
		"timeout", settings.Timeout,
	)
	return s, nil
}

// Close releases the history store and the log file.
func (s *session) Close() error {
	err := s.app.Close()
	if s.logFile != nil {
		if cerr := s.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// tuiModel wraps the MainView for bubbletea
type tuiModel struct {
	view *views.MainView
}

func (m tuiModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.view.Update(msg)
	m.view = updated.(*views.MainView)
	return m, cmd
}

func (m tuiModel) View() string {
	return m.view.View()
}

// runTUI starts the TUI application
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	store, err := sqlite.NewInMemory()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	s, err := openSession(cmd, opts, nil, app.WithHistory(store))
	if err != nil {
		store.Close()
		return err
	}
	defer s.Close()

	panels, err := s.app.Panels()
	if err != nil {
		return err
	}

	// Cancelled on quit so in-flight sends stop.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view := views.NewMainView(ctx, s.app, panels)
	view.SetHistoryStore(store)

	p := tea.NewProgram(tuiModel{view: view}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
