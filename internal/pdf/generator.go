package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/numbering"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the contract sent to signers.
func (g *Generator) Generate(contract model.Contract, signers []model.Signer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(contract.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 15)
	pdf.MultiCell(0, 8, tr(contract.Title), "", "C", false)

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrato nº %s, versão %d", numbering.Display(contract.ContractNumber), contract.Version)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Vigência: %s a %s", formatDate(contract.StartDate), formatOptionalDate(contract.EndDate))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, tr("Partes"))
	drawTableRow(pdf, g.fontName, []string{tr("Contratante"), contract.ContractorID.String()}, []float64{45, 125}, false)
	drawTableRow(pdf, g.fontName, []string{tr("Contratada"), contract.ContracteeID.String()}, []float64{45, 125}, false)
	pdf.Ln(2)

	if strings.TrimSpace(contract.Description) != "" {
		section(pdf, g.fontName, tr("Objeto"))
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(contract.Description), "", "L", false)
		pdf.Ln(2)
	}

	section(pdf, g.fontName, tr("Condições comerciais"))
	terms := contract.PaymentTerms
	rows := [][]string{
		{tr("Tipo"), tr(string(contract.ContractType))},
		{tr("Valor total"), formatAmount(contract.TotalValue, contract.Currency)},
		{tr("Faturamento"), tr(string(terms.BillingCycle))},
		{tr("Forma de pagamento"), tr(string(terms.PaymentMethod))},
		{tr("Prazo de pagamento"), tr(fmt.Sprintf("%d dias", terms.DueDays))},
	}
	if terms.LateFeePercentage != nil {
		rows = append(rows, []string{tr("Multa por atraso"), fmt.Sprintf("%.2f%%", *terms.LateFeePercentage)})
	}
	if terms.DiscountPercentage != nil {
		discount := fmt.Sprintf("%.2f%%", *terms.DiscountPercentage)
		if terms.DiscountDays != nil {
			discount = tr(fmt.Sprintf("%s até %d dias", discount, *terms.DiscountDays))
		}
		rows = append(rows, []string{tr("Desconto"), discount})
	}
	if contract.AutoRenewal {
		period := "ANNUAL"
		if contract.RenewalPeriod != nil {
			period = string(*contract.RenewalPeriod)
		}
		rows = append(rows, []string{tr("Renovação automática"), tr(period)})
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, row, []float64{60, 110}, false)
	}
	pdf.Ln(4)

	section(pdf, g.fontName, tr("Assinaturas"))
	drawTableRow(pdf, g.fontName, []string{tr("Signatário"), "E-mail", tr("Papel")}, []float64{60, 70, 40}, true)
	for _, s := range signers {
		drawTableRow(pdf, g.fontName, []string{tr(s.Name), s.Email, tr(string(s.Role))}, []float64{60, 70, 40}, false)
	}
	pdf.Ln(6)
	for _, s := range signers {
		signatureLine(pdf, g.fontName, tr(s.Name))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureLine(pdf *gofpdf.Fpdf, fontName, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 10, fmt.Sprintf("______________________________  %s", safeValue(name)), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "BRL"
	}
	return fmt.Sprintf("%s %s", currency, value.StringFixed(2))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "indeterminado"
	}
	return formatDate(*t)
}
