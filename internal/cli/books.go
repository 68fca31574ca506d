package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"livraria/internal/catalog"
	"livraria/internal/models"
	"livraria/internal/shell"
	"livraria/internal/validate"
)

func newAddCommand(a *App) *cobra.Command {
	var title, author, year, price string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			in := models.BookInput{Title: title, Author: author}
			if year != "" {
				y, ok := validate.Year(year)
				if !ok {
					return fmt.Errorf("invalid year %q", year)
				}
				in.Year = models.IntPtr(y)
			}
			if price != "" {
				p, ok := validate.Price(price)
				if !ok {
					return fmt.Errorf("invalid price %q", price)
				}
				in.Price = models.FloatPtr(p)
			}

			id, err := svc.AddBook(ctx, in)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Livro adicionado com id %d.\n", id)
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&year, "year", "", "publication year")
	cmd.Flags().StringVar(&price, "price", "", "price, >= 0")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newListCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			books, err := svc.ListBooks(ctx)
			if err != nil {
				return err
			}
			return a.printBooks(books, "Nenhum livro cadastrado.")
		}),
	}
}

func newSearchCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search AUTHOR",
		Short: "Find books by part of the author name",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			query, ok := validate.Required(args[0])
			if !ok {
				return errors.New("empty search")
			}
			books, err := svc.SearchByAuthor(ctx, query)
			if err != nil {
				return err
			}
			return a.printBooks(books, "Nenhum livro encontrado para esse autor.")
		}),
	}
}

func newUpdatePriceCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update-price ID PRICE",
		Short: "Change the price of a book",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, ok := validate.Price(args[1])
			if !ok {
				return fmt.Errorf("invalid price %q", args[1])
			}

			ok, err = svc.UpdatePrice(ctx, id, price)
			if err != nil {
				return err
			}
			return a.report(ok, "Preço atualizado com sucesso.", "Livro não encontrado.")
		}),
	}
}

func newDeleteCommand(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a book",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				sure, err := a.Prompter.Confirm(fmt.Sprintf("Tem certeza que quer remover o livro %d?", id))
				if err != nil {
					return err
				}
				if !sure {
					fmt.Fprintln(a.Out, "Remoção cancelada.")
					return nil
				}
			}

			ok, err := svc.RemoveBook(ctx, id)
			if err != nil {
				return err
			}
			return a.report(ok, "Livro removido.", "Livro não encontrado.")
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newDeleteAllCommand(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Remove every book",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *catalog.Service, _ []string) error {
			if !yes {
				sure, err := a.Prompter.Confirm("Tem certeza que deseja remover TODOS os livros?")
				if err != nil {
					return err
				}
				if !sure {
					fmt.Fprintln(a.Out, "Operação cancelada.")
					return nil
				}
			}

			ok, err := svc.RemoveAll(ctx)
			if err != nil {
				return err
			}
			return a.report(ok, "Todos os livros foram removidos.", "Não havia livros para remover.")
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) printBooks(books []models.Book, empty string) error {
	if len(books) == 0 {
		fmt.Fprintln(a.Out, empty)
		return nil
	}
	fmt.Fprintln(a.Out, shell.RenderBooks(books))
	return nil
}

// report prints the outcome of a mutation. Not-found is not an error.
func (a *App) report(ok bool, done string, missing string) error {
	if ok {
		color.New(color.FgGreen).Fprintln(a.Out, done)
		return nil
	}
	color.New(color.FgYellow).Fprintln(a.Out, missing)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
