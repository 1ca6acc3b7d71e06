package report

import (
	"fmt"
	"io"
	"time"

	"OrcaBI/internal/metrics"

	"github.com/jung-kurt/gofpdf"
)

var (
	headerColor       = [3]int{0, 51, 102}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{0, 51, 102}
	bodyTextColor     = [3]int{50, 50, 50}
	lineColor         = [3]int{200, 200, 200}
)

// WritePDF renders the KPIs, time series, top suppliers and DRE table.
func WritePDF(w io.Writer, res *metrics.Result, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Gerado em "+generatedAt.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Orçado x Realizado"), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	table := func(widths []float64, header []string, rows [][]string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, tr(h), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range rows {
			for i, v := range row {
				align := "R"
				if i == 0 {
					align = "L"
				}
				pdf.CellFormat(widths[i], 6, tr(v), "", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	k := res.KPIs
	sectionTitle("Indicadores")
	table([]float64{95, 95}, []string{"Indicador", "Valor"}, [][]string{
		{"Total Orçado", money(k.TotalBudgeted)},
		{"Total Realizado", money(k.TotalRealized)},
		{"Aderência", fmt.Sprintf("%.2f%%", k.Adherence)},
		{"Fornecedores", fmt.Sprint(k.TotalSuppliers)},
		{"Contas", fmt.Sprint(k.TotalAccounts)},
		{"Micro Mercados", fmt.Sprint(k.TotalMarkets)},
	})

	if len(res.Temporal) > 0 {
		var rows [][]string
		for _, p := range res.Temporal {
			rows = append(rows, []string{p.Period, money(p.Budgeted), money(p.Realized)})
		}
		sectionTitle("Evolução por período")
		table([]float64{70, 60, 60}, []string{"Período", "Orçado", "Realizado"}, rows)
	}

	var suppliers [][]string
	for _, s := range res.TopSuppliers {
		suppliers = append(suppliers, []string{s.Supplier, money(s.Amount)})
	}
	sectionTitle("Principais fornecedores")
	table([]float64{130, 60}, []string{"Razão Social", "Valor"}, suppliers)

	var dre [][]string
	for _, d := range res.DRE {
		dre = append(dre, []string{d.Account, money(d.Budgeted), money(d.Realized), fmt.Sprintf("%.2f%%", d.Variance)})
	}
	sectionTitle("DRE")
	table([]float64{55, 45, 45, 45}, []string{"Conta", "Orçado", "Realizado", "Variação"}, dre)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: writing PDF: %w", err)
	}
	return nil
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}
