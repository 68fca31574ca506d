package cli

import (
	"context"

	"github.com/spf13/cobra"

	"livraria/internal/catalog"
	"livraria/internal/shell"
)

// NewRootCommand builds the livraria command tree. Without a subcommand it
// starts the interactive menu.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "livraria",
		Short: "Local bookstore catalog with automatic backups",
		Long: `livraria manages a local book catalog stored in SQLite.
Every change is preceded by a backup of the catalog file; only the most
recent backups are kept.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		Args: cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			return shell.New(svc, a.Prompter, a.Out, a.log).Run(ctx)
		}),
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.ConfigFile, "config", "", "config file (default ./livraria.yaml when present)")
	flags.StringVar(&a.Root, "root", "", "catalog root directory (default ./meu_sistema_livraria)")
	flags.StringVar(&a.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newUpdatePriceCommand(a),
		newDeleteCommand(a),
		newDeleteAllCommand(a),
		newSearchCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newBackupCommand(a),
		newBackupsCommand(a),
		newReportCommand(a),
	)
	return root
}
