package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"livraria/internal/catalog"
	"livraria/internal/shell"
)

func optionalPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newExportCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export the catalog to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			path, err := svc.ExportCSV(ctx, optionalPath(args))
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Exportado para CSV: %s\n", path)
			return nil
		}),
	}
}

func newImportCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Import books from CSV",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			res, err := svc.ImportCSV(ctx, args[0])
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Importação concluída. %d registros inseridos.\n", res.Inserted)
			if res.Skipped > 0 {
				color.New(color.FgYellow).Fprintf(a.Out, "%d linha(s) ignorada(s).\n", res.Skipped)
			}
			return nil
		}),
	}
}

func newBackupCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create a manual backup of the catalog",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			path, err := svc.Backup(ctx)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Backup criado em: %s\n", path)
			return nil
		}),
	}
}

func newBackupsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List existing backups, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			archives, err := svc.Backups()
			if err != nil {
				return err
			}
			if len(archives) == 0 {
				fmt.Fprintln(a.Out, "Nenhum backup encontrado.")
				return nil
			}
			fmt.Fprintln(a.Out, shell.RenderArchives(archives))
			return nil
		}),
	}
}

func newReportCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report [PATH]",
		Short: "Generate the HTML report",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			path, err := svc.GenerateReport(ctx, optionalPath(args))
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Relatório HTML gerado em: %s\n", path)
			return nil
		}),
	}
}
