package shell

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"livraria/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	maxTitleWidth  = 38
	maxAuthorWidth = 28
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RenderBooks draws books as a bordered table.
func RenderBooks(books []models.Book) string {
	t := newTable("ID", "Título", "Autor", "Ano", "Preço")
	for _, b := range books {
		price := ""
		if b.Price != nil {
			price = fmt.Sprintf("R$ %.2f", *b.Price)
		}
		t.Row(
			strconv.FormatInt(b.ID, 10),
			truncate(b.Title, maxTitleWidth),
			truncate(b.Author, maxAuthorWidth),
			b.YearText(),
			price,
		)
	}
	return t.String()
}

// RenderArchives draws backup archives as a bordered table.
func RenderArchives(archives []models.Archive) string {
	t := newTable("Arquivo", "Criado em", "Tamanho")
	for _, a := range archives {
		t.Row(a.Name, a.ModTime.Format("2006-01-02 15:04:05"), fmt.Sprintf("%d B", a.Size))
	}
	return t.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
