// Package shell is the interactive numbered menu over the catalog.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"livraria/internal/catalog"
	"livraria/internal/models"
	"livraria/internal/validate"
)

type action struct {
	label string
	run   func(ctx context.Context) error
}

// Shell dispatches menu choices to the catalog service.
type Shell struct {
	svc    *catalog.Service
	prompt Prompter
	out    io.Writer
	log    *log.Logger

	actions []action
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func New(svc *catalog.Service, prompt Prompter, out io.Writer, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.Default()
	}
	s := &Shell{svc: svc, prompt: prompt, out: out, log: logger}
	s.actions = []action{
		{"Adicionar um novo livro", s.addBook},
		{"Exibir todos os livros", s.listBooks},
		{"Atualizar preço de um livro", s.updatePrice},
		{"Remover livro", s.removeBook},
		{"Buscar livros por autor", s.searchByAuthor},
		{"Exportar dados para CSV", s.exportCSV},
		{"Importar dados de CSV", s.importCSV},
		{"Fazer backup manual do banco de dados", s.backup},
		{"Gerar relatório HTML", s.report},
		{"Remover TODOS os livros", s.removeAll},
		{"Listar backups", s.listBackups},
	}
	return s
}

const exitLabel = "Sair"

// Run shows the menu until the user exits or interrupts. Errors from single
// operations are printed and the menu comes back.
func (s *Shell) Run(ctx context.Context) error {
	options := make([]string, 0, len(s.actions)+1)
	for i, a := range s.actions {
		options = append(options, fmt.Sprintf("[%d] %s", i+1, a.label))
	}
	options = append(options, fmt.Sprintf("[%d] %s", len(s.actions)+1, exitLabel))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		choice, err := s.prompt.Select("Livraria Aoros: escolha uma opção", options)
		if isQuit(err) {
			fmt.Fprintln(s.out, "Encerrando.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("menu: %w", err)
		}
		if choice < 0 || choice > len(s.actions) {
			errColor.Fprintln(s.out, "Opção inválida.")
			continue
		}
		if choice == len(s.actions) {
			fmt.Fprintln(s.out, "Saindo do programa...")
			return nil
		}

		err = s.actions[choice].run(ctx)
		if isQuit(err) {
			fmt.Fprintln(s.out, "Encerrando.")
			return nil
		}
		if err != nil {
			s.log.Error("operation failed", "op", s.actions[choice].label, "err", err)
			errColor.Fprintf(s.out, "Erro: %v\n", err)
		}
		fmt.Fprintln(s.out)
	}
}

func isQuit(err error) bool {
	return errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF)
}

func (s *Shell) addBook(ctx context.Context) error {
	title, err := s.prompt.Input("Título:", requiredCheck)
	if err != nil {
		return err
	}
	author, err := s.prompt.Input("Autor:", requiredCheck)
	if err != nil {
		return err
	}
	yearText, err := s.prompt.Input("Ano de publicação (opcional, ENTER para pular):", optional(yearCheck))
	if err != nil {
		return err
	}
	priceText, err := s.prompt.Input("Preço (ex: 25.50, opcional):", optional(priceCheck))
	if err != nil {
		return err
	}

	in := models.BookInput{Title: title, Author: author}
	if y, ok := validate.Year(yearText); ok {
		in.Year = models.IntPtr(y)
	}
	if p, ok := validate.Price(priceText); ok {
		in.Price = models.FloatPtr(p)
	}

	id, err := s.svc.AddBook(ctx, in)
	if errors.Is(err, catalog.ErrInvalidBook) {
		warnColor.Fprintln(s.out, "Título e Autor são obrigatórios.")
		return nil
	}
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Livro adicionado com id %d. Backup automático criado.\n", id)
	return nil
}

func (s *Shell) listBooks(ctx context.Context) error {
	books, err := s.svc.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "Nenhum livro cadastrado.")
		return nil
	}
	fmt.Fprintln(s.out, RenderBooks(books))
	return nil
}

func (s *Shell) askID(message string) (int64, error) {
	text, err := s.prompt.Input(message, idCheck)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(text, 10, 64)
}

func (s *Shell) updatePrice(ctx context.Context) error {
	id, err := s.askID("ID do livro a atualizar:")
	if err != nil {
		return err
	}
	priceText, err := s.prompt.Input("Novo preço:", priceCheck)
	if err != nil {
		return err
	}
	price, _ := validate.Price(priceText)

	ok, err := s.svc.UpdatePrice(ctx, id, price)
	if err != nil {
		return err
	}
	if !ok {
		warnColor.Fprintln(s.out, "Livro não encontrado.")
		return nil
	}
	okColor.Fprintln(s.out, "Preço atualizado com sucesso. Backup automático criado.")
	return nil
}

func (s *Shell) removeBook(ctx context.Context) error {
	id, err := s.askID("ID do livro a remover:")
	if err != nil {
		return err
	}
	sure, err := s.prompt.Confirm(fmt.Sprintf("Tem certeza que quer remover o livro %d?", id))
	if err != nil {
		return err
	}
	if !sure {
		fmt.Fprintln(s.out, "Remoção cancelada.")
		return nil
	}

	ok, err := s.svc.RemoveBook(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		warnColor.Fprintln(s.out, "Livro não encontrado.")
		return nil
	}
	okColor.Fprintln(s.out, "Livro removido. Backup automático criado.")
	return nil
}

func (s *Shell) searchByAuthor(ctx context.Context) error {
	query, err := s.prompt.Input("Autor (parte ou nome completo):", nil)
	if err != nil {
		return err
	}
	if query == "" {
		warnColor.Fprintln(s.out, "Pesquisa vazia.")
		return nil
	}

	books, err := s.svc.SearchByAuthor(ctx, query)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "Nenhum livro encontrado para esse autor.")
		return nil
	}
	for _, b := range books {
		fmt.Fprintln(s.out, b.String())
	}
	return nil
}

func (s *Shell) exportCSV(ctx context.Context) error {
	path, err := s.svc.ExportCSV(ctx, "")
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Exportado para CSV: %s\n", path)
	return nil
}

func (s *Shell) importCSV(ctx context.Context) error {
	path, err := s.prompt.Input("Caminho do arquivo CSV para importar:", nil)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(s.out, "Operação cancelada.")
		return nil
	}

	res, err := s.svc.ImportCSV(ctx, path)
	if errors.Is(err, catalog.ErrFileNotFound) {
		warnColor.Fprintf(s.out, "Arquivo não encontrado: %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	if res.Inserted == 0 {
		fmt.Fprintln(s.out, "Nenhum registro para importar.")
		return nil
	}
	okColor.Fprintf(s.out, "Importação concluída. %d registros inseridos. Backup automático criado.\n", res.Inserted)
	if res.Skipped > 0 {
		warnColor.Fprintf(s.out, "%d linha(s) ignorada(s).\n", res.Skipped)
	}
	return nil
}

func (s *Shell) backup(ctx context.Context) error {
	path, err := s.svc.Backup(ctx)
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Backup criado em: %s\n", path)
	return nil
}

func (s *Shell) report(ctx context.Context) error {
	path, err := s.svc.GenerateReport(ctx, "")
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Relatório HTML gerado em: %s\n", path)
	return nil
}

func (s *Shell) removeAll(ctx context.Context) error {
	sure, err := s.prompt.Confirm("Tem certeza que deseja remover TODOS os livros?")
	if err != nil {
		return err
	}
	if !sure {
		fmt.Fprintln(s.out, "Operação cancelada.")
		return nil
	}

	ok, err := s.svc.RemoveAll(ctx)
	if err != nil {
		return err
	}
	if !ok {
		warnColor.Fprintln(s.out, "Não havia livros para remover.")
		return nil
	}
	okColor.Fprintln(s.out, "Todos os livros foram removidos. Backup automático criado.")
	return nil
}

func (s *Shell) listBackups(context.Context) error {
	archives, err := s.svc.Backups()
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		fmt.Fprintln(s.out, "Nenhum backup encontrado.")
		return nil
	}
	fmt.Fprintln(s.out, RenderArchives(archives))
	return nil
}
