package shell

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/catalog"
	"livraria/internal/config"
	"livraria/internal/logging"
	"livraria/internal/models"
)

// scripted replays answers in order. Input answers rejected by the check are
// consumed the same way a re-prompt would consume them.
type scripted struct {
	t       *testing.T
	answers []any
}

func (s *scripted) next() any {
	s.t.Helper()
	require.NotEmpty(s.t, s.answers, "script ran out of answers")
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a
}

func (s *scripted) Select(_ string, options []string) (int, error) {
	switch a := s.next().(type) {
	case int:
		return a - 1, nil
	case error:
		return 0, a
	default:
		return 0, fmt.Errorf("unexpected select answer %v", a)
	}
}

func (s *scripted) Input(_ string, check func(string) error) (string, error) {
	for {
		switch a := s.next().(type) {
		case string:
			if check != nil && check(a) != nil {
				continue
			}
			return a, nil
		case error:
			return "", a
		default:
			return "", fmt.Errorf("unexpected input answer %v", a)
		}
	}
}

func (s *scripted) Confirm(string) (bool, error) {
	switch a := s.next().(type) {
	case bool:
		return a, nil
	case error:
		return false, a
	default:
		return false, fmt.Errorf("unexpected confirm answer %v", a)
	}
}

const (
	optAdd = iota + 1
	optList
	optUpdatePrice
	optRemove
	optSearch
	optExport
	optImport
	optBackup
	optReport
	optRemoveAll
	optBackups
	optExit
)

func runScript(t *testing.T, svc *catalog.Service, answers ...any) string {
	t.Helper()
	var out bytes.Buffer
	p := &scripted{t: t, answers: answers}
	sh := New(svc, p, &out, logging.Discard())
	require.NoError(t, sh.Run(context.Background()))
	assert.Empty(t, p.answers, "unused answers")
	return out.String()
}

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	svc, err := catalog.Open(config.Default(t.TempDir()), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestAddAndList(t *testing.T) {
	svc := newService(t)

	out := runScript(t, svc,
		optAdd, "Dom Casmurro", "Machado de Assis", "50", "1899", "abc", "25.5",
		optList,
		optExit,
	)

	assert.Contains(t, out, "Livro adicionado com id 1")
	assert.Contains(t, out, "Dom Casmurro")
	assert.Contains(t, out, "R$ 25.50")
	assert.Contains(t, out, "Saindo do programa")

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1899, *books[0].Year)
}

func TestAddWithOptionalFieldsSkipped(t *testing.T) {
	svc := newService(t)

	runScript(t, svc, optAdd, "", "Título", "Autor", "", "", optExit)

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Nil(t, books[0].Year)
	assert.Nil(t, books[0].Price)
}

func TestRemoveNeedsConfirmation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id, err := svc.AddBook(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)

	out := runScript(t, svc,
		optRemove, "x", fmt.Sprint(id), false,
		optRemove, "999", true,
		optExit,
	)
	assert.Contains(t, out, "Remoção cancelada.")
	assert.Contains(t, out, "Livro não encontrado.")

	_, found, err := svc.FindBook(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	runScript(t, svc, optRemove, fmt.Sprint(id), true, optExit)
	_, found, err = svc.FindBook(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdatePriceAndSearch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id, err := svc.AddBook(ctx, models.BookInput{Title: "Gabriela", Author: "Jorge Amado"})
	require.NoError(t, err)

	out := runScript(t, svc,
		optUpdatePrice, fmt.Sprint(id), "-3", "30",
		optSearch, "",
		optSearch, "amado",
		optSearch, "Tolkien",
		optExit,
	)
	assert.Contains(t, out, "Preço atualizado com sucesso")
	assert.Contains(t, out, "Pesquisa vazia.")
	assert.Contains(t, out, "Gabriela - Jorge Amado")
	assert.Contains(t, out, "Nenhum livro encontrado")

	b, _, err := svc.FindBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 30.0, *b.Price)
}

func TestExportImportBackupReport(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.AddBook(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)

	missing := filepath.Join(t.TempDir(), "missing.csv")
	out := runScript(t, svc,
		optExport,
		optImport, "",
		optImport, missing,
		optImport, svc.Config().CSVFile,
		optBackup,
		optReport,
		optBackups,
		optExit,
	)

	assert.Contains(t, out, "Exportado para CSV: "+svc.Config().CSVFile)
	assert.Contains(t, out, "Operação cancelada.")
	assert.Contains(t, out, "Arquivo não encontrado: "+missing)
	assert.Contains(t, out, "1 registros inseridos")
	assert.Contains(t, out, "Backup criado em:")
	assert.Contains(t, out, "Relatório HTML gerado em: "+svc.Config().ReportFile)
	assert.Contains(t, out, svc.Config().BackupPrefix)
	assert.FileExists(t, svc.Config().ReportFile)

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestRemoveAll(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	out := runScript(t, svc, optRemoveAll, true, optExit)
	assert.Contains(t, out, "Não havia livros para remover.")

	_, err := svc.AddBook(ctx, models.BookInput{Title: "A", Author: "B"})
	require.NoError(t, err)

	out = runScript(t, svc, optRemoveAll, false, optRemoveAll, true, optExit)
	assert.Contains(t, out, "Operação cancelada.")
	assert.Contains(t, out, "Todos os livros foram removidos.")

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestInterruptEndsLoop(t *testing.T) {
	svc := newService(t)

	out := runScript(t, svc, optAdd, "Título", terminal.InterruptErr)
	assert.Contains(t, out, "Encerrando.")

	out = runScript(t, svc, terminal.InterruptErr)
	assert.Contains(t, out, "Encerrando.")

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestEmptyListings(t *testing.T) {
	svc := newService(t)

	out := runScript(t, svc, optList, optBackups, optExit)
	assert.Contains(t, out, "Nenhum livro cadastrado.")
	assert.Contains(t, out, "Nenhum backup encontrado.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "Ação…", truncate("Ação e reação", 5))
}
