// Package render turns an account summary into the HTML email body.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/radamanthiss/transaction-api/internal/domain"
)

//go:embed template.html
var summaryTemplate string

// Renderer produces the summary email body from aggregates.
type Renderer interface {
	Render(sum domain.AccountSummary) (string, error)
}

// HTMLRenderer renders the embedded summary template.
type HTMLRenderer struct {
	tmpl *template.Template
}

// templateData is the view model for the summary template. Monetary figures
// are pre-formatted to two decimal places.
type templateData struct {
	TotalBalance  string
	AverageCredit string
	AverageDebit  string
	Monthly       []domain.MonthCount
}

// New parses the embedded template.
func New() (*HTMLRenderer, error) {
	tmpl, err := template.New("summary").Parse(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing summary template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render fills the summary template for one account.
func (r *HTMLRenderer) Render(sum domain.AccountSummary) (string, error) {
	data := templateData{
		TotalBalance:  sum.TotalBalance.StringFixed(2),
		AverageCredit: sum.AverageCredit.StringFixed(2),
		AverageDebit:  sum.AverageDebit.StringFixed(2),
		Monthly:       sum.Monthly,
	}

	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering summary template: %w", err)
	}
	return buf.String(), nil
}
