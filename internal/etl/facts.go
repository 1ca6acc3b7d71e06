package etl

import (
	"fmt"
	"strconv"
	"strings"

	"OrcaBI/internal/config"
	"OrcaBI/internal/starschema"
)

// Facts is the output of the fact builder.
type Facts struct {
	Budget   []starschema.BudgetFact
	Realized []starschema.RealizedFact
	// Skipped counts validated records that produced no fact because their
	// period was invalid or decoding them failed.
	Skipped int
}

// BuildFacts emits budget and realized facts from validated records. The id
// suffix is the record's position in records, so the same sheet always
// yields the same ids. A record may yield no fact, one, or both.
func BuildFacts(records []RawRecord) Facts {
	var out Facts
	for i, rec := range records {
		if !buildOne(i, rec, &out) {
			out.Skipped++
		}
	}
	return out
}

func buildOne(i int, rec RawRecord, out *Facts) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logSkip(rec.SheetRow, fmt.Sprint(r))
			ok = false
		}
	}()

	row := Shape(rec)
	if row.Year <= 0 || row.Year > 9999 || row.Month <= 0 || row.Month > 12 {
		return false
	}
	// zero-padded so string order matches calendar order
	date := fmt.Sprintf("%04d-%02d-01", row.Year, row.Month)
	idx := strconv.Itoa(i)

	if row.Budgeted != 0 {
		out.Budget = append(out.Budget, starschema.BudgetFact{
			ID:              config.BudgetIDPrefix + idx,
			Year:            row.Year,
			Month:           row.Month,
			Date:            date,
			MicroMarketCode: row.MicroMarketCode,
			AccountCode:     row.LedgerAccountCode,
			BudgetedAmount:  row.Budgeted,
		})
	}

	if row.Realized != 0 {
		supplier := row.ManagementAccount
		if supplier == "" {
			supplier = config.DefaultSupplierName
		}
		out.Realized = append(out.Realized, starschema.RealizedFact{
			ID:              config.RealizedIDPrefix + idx,
			Year:            row.Year,
			Month:           row.Month,
			Date:            date,
			MicroMarketCode: row.MicroMarketCode,
			AccountCode:     row.LedgerAccountCode,
			Supplier:        supplier,
			RealizedAmount:  row.Realized,
			CostHistory: strings.Join(
				[]string{row.Department, row.Package, row.SubPackage},
				config.HistorySeparator,
			),
		})
	}
	return true
}
