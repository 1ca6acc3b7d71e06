// Package report renders a metrics result as a downloadable workbook or PDF.
package report

import (
	"fmt"
	"io"

	"OrcaBI/internal/metrics"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary   = "Resumo"
	SheetTemporal  = "Temporal"
	SheetSuppliers = "Fornecedores"
	SheetDRE       = "DRE"
)

// WriteXLSX writes one sheet per section of res.
func WriteXLSX(w io.Writer, res *metrics.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetTemporal, SheetSuppliers, SheetDRE} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report: creating sheet %s: %w", name, err)
		}
	}

	k := res.KPIs
	summary := [][]interface{}{
		{"Indicador", "Valor"},
		{"Total Orçado", k.TotalBudgeted},
		{"Total Realizado", k.TotalRealized},
		{"Aderência (%)", k.Adherence},
		{"Fornecedores", k.TotalSuppliers},
		{"Contas", k.TotalAccounts},
		{"Micro Mercados", k.TotalMarkets},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	temporal := [][]interface{}{{"Período", "Orçado", "Realizado"}}
	for _, p := range res.Temporal {
		temporal = append(temporal, []interface{}{p.Period, p.Budgeted, p.Realized})
	}
	if err := writeRows(f, SheetTemporal, temporal); err != nil {
		return err
	}

	suppliers := [][]interface{}{{"Razão Social", "Valor"}}
	for _, s := range res.TopSuppliers {
		suppliers = append(suppliers, []interface{}{s.Supplier, s.Amount})
	}
	if err := writeRows(f, SheetSuppliers, suppliers); err != nil {
		return err
	}

	dre := [][]interface{}{{"Conta", "Orçado", "Realizado", "Variação (%)"}}
	for _, d := range res.DRE {
		dre = append(dre, []interface{}{d.Account, d.Budgeted, d.Realized, d.Variance})
	}
	if err := writeRows(f, SheetDRE, dre); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
