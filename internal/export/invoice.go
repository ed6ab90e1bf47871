// Package export renders invoices as self-contained, printable HTML
// documents suitable for downloading and sending to a client.
package export

import (
	"fmt"
	"html/template"
	"io"

	"timeledger/internal/domain"
)

// InvoiceRenderer renders an invoice with its client and sessions into HTML.
type InvoiceRenderer struct {
	tmpl *template.Template
}

// NewInvoiceRenderer parses the built-in invoice template.
func NewInvoiceRenderer() *InvoiceRenderer {
	funcs := template.FuncMap{
		"money": formatCents,
		"hours": func(h float64) string { return fmt.Sprintf("%.2f", h) },
	}
	return &InvoiceRenderer{
		tmpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)),
	}
}

type invoiceData struct {
	Invoice  *domain.Invoice
	Client   *domain.Client
	Sessions []domain.WorkSession
}

// Render writes the invoice document to w.
func (ir *InvoiceRenderer) Render(w io.Writer, inv *domain.Invoice, client *domain.Client, sessions []domain.WorkSession) error {
	return ir.tmpl.Execute(w, invoiceData{Invoice: inv, Client: client, Sessions: sessions})
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Invoice.ID}}</title>
<style>
  body { font-family: Georgia, serif; margin: 3rem auto; max-width: 46rem; color: #222; }
  h1 { font-size: 1.6rem; border-bottom: 2px solid #222; padding-bottom: .4rem; }
  table { width: 100%; border-collapse: collapse; margin-top: 1.5rem; }
  th, td { text-align: left; padding: .45rem .6rem; border-bottom: 1px solid #ccc; }
  th { background: #f4f4f4; }
  td.num, th.num { text-align: right; }
  .meta { margin-top: 1rem; color: #555; }
  .totals { margin-top: 1.5rem; text-align: right; font-size: 1.1rem; }
  .status { display: inline-block; padding: .15rem .6rem; border: 1px solid #222; border-radius: 3px; }
</style>
</head>
<body>
<h1>Invoice</h1>
<p class="meta">
  Invoice {{.Invoice.ID}}<br>
  Issued {{.Invoice.IssuedAt.Format "January 2, 2006"}}<br>
  Status <span class="status">{{.Invoice.Status}}</span>
</p>
<p class="meta">
  Billed to<br>
  <strong>{{.Client.Name}}</strong>{{if .Client.Email}}<br>{{.Client.Email}}{{end}}
</p>
<table>
  <thead>
    <tr><th>Date</th><th>Description</th><th class="num">Hours</th></tr>
  </thead>
  <tbody>
  {{range .Sessions}}
    <tr>
      <td>{{.StartTime.Format "Jan 2, 2006"}}</td>
      <td>{{if .Tag}}{{.Tag}}{{else}}Work session{{end}}</td>
      <td class="num">{{hours .Hours}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
<p class="totals">
  {{hours .Invoice.TotalHours}} hours at {{money .Client.HourlyRateCents}}/hr<br>
  <strong>Total {{money .Invoice.TotalAmountCents}}</strong>
</p>
</body>
</html>
`
