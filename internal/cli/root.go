package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artpar/popcorn/internal/app"
	"github.com/artpar/popcorn/internal/config"
	"github.com/artpar/popcorn/internal/logging"
	"github.com/artpar/popcorn/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DataDir    string
	APIKey     string
	Store      string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:          "popcorn",
		Short:        "popcorn - search movies and keep a watched list",
		Long:         "popcorn searches OMDb as you type and keeps a rated list of the movies you watched.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ~/.config/popcorn/config.yaml)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "Directory for the watched list and logs")
	flags.StringVar(&opts.APIKey, "api-key", "", "OMDb API key (overrides "+config.APIKeyEnv+")")
	flags.StringVar(&opts.Store, "store", "", "Storage driver: sqlite or file")

	// Add subcommands
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewWatchedCommand(opts))

	return cmd
}

// LoadConfig reads the config file and applies flag overrides.
func (o *GlobalOptions) LoadConfig() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.DataDir != "" {
		defaultLog := filepath.Join(cfg.Storage.DataDir, "popcorn.log")
		cfg.Storage.DataDir = o.DataDir
		if cfg.Log.File == defaultLog {
			cfg.Log.File = filepath.Join(o.DataDir, "popcorn.log")
		}
	}
	if o.APIKey != "" {
		cfg.OMDb.APIKey = o.APIKey
	}
	if o.Store != "" {
		switch o.Store {
		case config.DriverSQLite, config.DriverFile:
			cfg.Storage.Driver = o.Store
		default:
			return nil, errors.Errorf("unknown storage driver %q", o.Store)
		}
	}
	return cfg, nil
}

// openApp builds the application for a command. The returned function
// releases the store and the log file.
func openApp(ctx context.Context, opts *GlobalOptions, online bool) (*app.App, func(), error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if online {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, app.WithConfig(cfg), app.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("failed to start")
		closer.Close()
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"store":    cfg.Storage.Driver,
		"data_dir": cfg.Storage.DataDir,
	}).Info("popcorn started")

	return a, func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
		closer.Close()
	}, nil
}

// interrupted returns an error when ctx ended while a lookup was in flight.
// Fetchers settle an aborted request without an error, so commands check the
// context themselves before reporting a result.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted")
	}
	return nil
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
func runTUI(ctx context.Context, opts *GlobalOptions) error {
	a, cleanup, err := openApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer cleanup()

	view := views.NewMainView(ctx, a)
	defer view.Close()

	p := tea.NewProgram(tuiModel{view: view}, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
