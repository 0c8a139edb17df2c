package render

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/mjaworski/window-offers/internal/services"
)

const offerHTMLTemplate = `<!doctype html>
<html lang="pl">
<head>
  <meta charset="utf-8" />
  <title>Oferta {{.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .document { max-width: 820px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #1d4ed8;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .brand img { max-height: 48px; }
    .meta { text-align: right; font-size: 14px; }
    .meta .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section { margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th, td { padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: left; vertical-align: top; }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .config { color: #6b7280; font-size: 12px; }
    .totals { margin-top: 16px; width: 280px; margin-left: auto; font-size: 14px; }
    .totals td { border: none; padding: 4px 8px; }
    .totals .grand { font-size: 16px; font-weight: bold; border-top: 1px solid #111827; }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="document">
    <div class="header">
      <div class="brand"><img src="{{dataURI .LogoDataURI}}" alt="logo" /></div>
      <div class="meta">
        <div class="label">Oferta</div>
        <div><strong>{{.Number}}</strong></div>
        <div>Data: {{.Date}}</div>
        <div>Klient: {{.Client}}</div>
      </div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Lp.</th>
            <th>Produkt</th>
            <th>Wymiary (mm)</th>
            <th>Konfiguracja</th>
            <th>Cena netto</th>
            <th>Ilość</th>
            <th>Wartość netto</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Position}}</td>
            <td>{{.TypeName}}</td>
            <td>{{.WidthMM}} × {{.HeightMM}}</td>
            <td class="config">
              {{range $category, $name := .Configuration}}<div>{{$category}}: {{$name}}</div>{{end}}
            </td>
            <td>{{money .UnitNetPrice}}</td>
            <td>{{.Quantity}}</td>
            <td>{{money .LineNetTotal}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <table class="totals">
        <tr><td>Ilość pozycji</td><td>{{.TotalQuantity}}</td></tr>
        <tr><td>Suma netto</td><td>{{money .NetTotal}}</td></tr>
        <tr><td>VAT ({{.VATRate}}%)</td><td>{{money .VATTotal}}</td></tr>
        <tr class="grand"><td>Suma brutto</td><td>{{money .GrossTotal}}</td></tr>
      </table>
    </div>

    {{if .Notes}}<div class="section"><div class="label">Uwagi</div><div>{{.Notes}}</div></div>{{end}}

    <div class="footer">OknoSystem &copy; {{.Year}}</div>
  </div>
</body>
</html>
`

const invoiceHTMLTemplate = `<!doctype html>
<html lang="pl">
<head>
  <meta charset="utf-8" />
  <title>Faktura {{.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .document { max-width: 820px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #1d4ed8;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .brand img { max-height: 48px; }
    .meta { text-align: right; font-size: 14px; }
    .meta .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .parties { display: flex; gap: 48px; margin-bottom: 24px; font-size: 14px; }
    .section { margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th, td { padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: left; vertical-align: top; }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .config { color: #6b7280; font-size: 12px; }
    .totals { margin-top: 16px; width: 280px; margin-left: auto; font-size: 14px; }
    .totals td { border: none; padding: 4px 8px; }
    .totals .grand { font-size: 16px; font-weight: bold; border-top: 1px solid #111827; }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="document">
    <div class="header">
      <div class="brand"><img src="{{dataURI .LogoDataURI}}" alt="logo" /></div>
      <div class="meta">
        <div class="label">Faktura</div>
        <div><strong>{{.Number}}</strong></div>
        <div>Data wystawienia: {{.IssueDate}}</div>
        <div>Termin płatności: {{.DueDate}}</div>
        <div>Forma płatności: {{.PaymentMethod}}</div>
      </div>
    </div>

    <div class="parties">
      <div>
        <div class="label">Nabywca</div>
        <div><strong>{{.Client.Name}}</strong></div>
        <div>{{.Client.Address}}</div>
        {{if .Client.NIP}}<div>NIP: {{.Client.NIP}}</div>{{end}}
        {{if .Client.Phone}}<div>Tel: {{.Client.Phone}}</div>{{end}}
        {{if .Client.Email}}<div>{{.Client.Email}}</div>{{end}}
      </div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Lp.</th>
            <th>Produkt</th>
            <th>Wymiary (mm)</th>
            <th>Opcje</th>
            <th>Cena jedn.</th>
            <th>Ilość</th>
            <th>Netto</th>
            <th>Brutto</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Position}}</td>
            <td>{{.ProductType}}</td>
            <td>{{.WidthMM}} × {{.HeightMM}}</td>
            <td class="config">
              {{range $category, $name := .OptionNames}}<div>{{$category}}: {{$name}}</div>{{end}}
            </td>
            <td>{{money .UnitPrice}} {{$.Currency}}</td>
            <td>{{.Quantity}}</td>
            <td>{{money .NetAmount}} {{$.Currency}}</td>
            <td>{{money .GrossAmount}} {{$.Currency}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <table class="totals">
        <tr><td>Razem netto</td><td>{{money .NetTotal}} {{.Currency}}</td></tr>
        <tr><td>VAT ({{percent .VATRate}}%)</td><td>{{money .VATAmount}} {{.Currency}}</td></tr>
        <tr class="grand"><td>Razem brutto</td><td>{{money .GrossTotal}} {{.Currency}}</td></tr>
      </table>
    </div>

    {{if .Notes}}<div class="section"><div class="label">Uwagi</div><div>{{.Notes}}</div></div>{{end}}

    <div class="footer">OknoSystem &copy; {{.Year}}</div>
  </div>
</body>
</html>
`

// HTMLRenderer renders offer and invoice documents to standalone HTML,
// the intermediate form the fixed-layout PDF converter consumes.
type HTMLRenderer struct {
	offerTpl   *template.Template
	invoiceTpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"money":   formatMoney,
		"percent": formatPercent,
		// logo URIs are built from the embedded asset, safe by construction
		"dataURI": func(s string) template.URL { return template.URL(s) },
	}
	return &HTMLRenderer{
		offerTpl:   template.Must(template.New("offer").Funcs(funcs).Parse(offerHTMLTemplate)),
		invoiceTpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderOffer(doc *services.OfferDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.offerTpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) RenderInvoice(doc *services.InvoiceDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.invoiceTpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatPercent renders a fractional VAT rate (0.23) as a percentage (23).
func formatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(0)
}
