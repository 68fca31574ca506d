package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"livraria/internal/catalog"
	"livraria/internal/config"
	"livraria/internal/logging"
	"livraria/internal/shell"
)

// App carries the global flags and the I/O every command uses.
type App struct {
	ConfigFile string
	Root       string
	LogLevel   string

	Out      io.Writer
	LogOut   io.Writer
	Prompter shell.Prompter

	cfg *config.Config
	log *log.Logger
}

// NewApp returns an App bound to the process terminal.
func NewApp() *App {
	return &App{
		Out:      os.Stdout,
		LogOut:   os.Stderr,
		Prompter: shell.SurveyPrompter{},
	}
}

func (a *App) setup() error {
	cfg, err := config.Load(a.ConfigFile, config.WithRoot(a.Root), config.WithLogLevel(a.LogLevel))
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.Setup(cfg.LogLevel, a.LogOut)
	return nil
}

// withCatalog opens the catalog for the duration of fn.
func (a *App) withCatalog(ctx context.Context, fn func(ctx context.Context, svc *catalog.Service) error) error {
	svc, err := catalog.Open(*a.cfg, a.log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

// Execute runs the command tree with args (os.Args[1:] when nil).
func Execute(ctx context.Context, a *App, args []string) error {
	root := NewRootCommand(a)
	if args != nil {
		root.SetArgs(args)
	}
	root.SetOut(a.Out)
	root.SetErr(a.LogOut)
	return root.ExecuteContext(ctx)
}

// run adapts a catalog operation to cobra's RunE.
func (a *App) run(fn func(ctx context.Context, svc *catalog.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return a.withCatalog(cmd.Context(), func(ctx context.Context, svc *catalog.Service) error {
			return fn(ctx, svc, args)
		})
	}
}
