package exchange

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"livraria/internal/models"
)

// ReportTimeLayout is how the generation time is printed in the report.
const ReportTimeLayout = "2006-01-02 15:04:05"

var reportTmpl = template.Must(template.New("report").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Relatório de Livros</title>
<style>table{border-collapse:collapse;width:100%}th,td{border:1px solid #ccc;padding:8px;text-align:left}</style>
</head><body>
<h1>Relatório de Livros</h1>
<p class="generated">Gerado em {{.GeneratedAt}}</p>
<p class="total">{{len .Books}} livro(s)</p>
<table><thead><tr><th>ID</th><th>Title</th><th>Author</th><th>Year</th><th>Price</th></tr></thead><tbody>
{{- range .Books}}
<tr><td>{{.ID}}</td><td>{{.Title}}</td><td>{{.Author}}</td><td>{{.YearText}}</td><td>{{.PriceText}}</td></tr>
{{- end}}
</tbody></table></body></html>
`))

// RenderReport writes a static HTML page with one row per book.
func RenderReport(w io.Writer, books []models.Book, generatedAt time.Time) error {
	data := struct {
		GeneratedAt string
		Books       []models.Book
	}{
		GeneratedAt: generatedAt.Format(ReportTimeLayout),
		Books:       books,
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
