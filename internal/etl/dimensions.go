package etl

import (
	"sort"
	"time"

	"OrcaBI/internal/config"
	"OrcaBI/internal/starschema"
)

type keySet map[string]struct{}

func (k keySet) add(v string) {
	if v != "" {
		k[v] = struct{}{}
	}
}

func (k keySet) sorted() []string {
	out := make([]string, 0, len(k))
	for v := range k {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DeriveDimensions builds the dimension tables in two passes: collect the
// distinct natural keys from all facts, then compute each entry from its key
// alone. Output is ordered by key.
func DeriveDimensions(budget []starschema.BudgetFact, realized []starschema.RealizedFact) starschema.Dimensions {
	dates, markets, accounts, suppliers := keySet{}, keySet{}, keySet{}, keySet{}

	for _, f := range budget {
		dates.add(f.Date)
		markets.add(f.MicroMarketCode)
		accounts.add(f.AccountCode)
	}
	for _, f := range realized {
		dates.add(f.Date)
		markets.add(f.MicroMarketCode)
		accounts.add(f.AccountCode)
		suppliers.add(f.Supplier)
	}

	var dims starschema.Dimensions
	for _, d := range dates.sorted() {
		if c, ok := calendarEntry(d); ok {
			dims.Calendar = append(dims.Calendar, c)
		}
	}
	for _, code := range markets.sorted() {
		dims.Structure = append(dims.Structure, starschema.StructureDim{
			MicroMarketCode: code,
			MicroMarketName: code,
		})
	}
	for _, code := range accounts.sorted() {
		dims.Accounts = append(dims.Accounts, starschema.AccountDim{
			AccountCode:   code,
			LedgerAccount: code,
		})
	}
	for _, name := range suppliers.sorted() {
		dims.Suppliers = append(dims.Suppliers, starschema.SupplierDim{
			Supplier:     name,
			SupplierType: config.DefaultSupplierType,
		})
	}
	return dims
}

func calendarEntry(date string) (starschema.CalendarDim, bool) {
	t, err := time.Parse(config.DateFormat, date)
	if err != nil {
		return starschema.CalendarDim{}, false
	}
	month := int(t.Month())
	return starschema.CalendarDim{
		Date:      date,
		Year:      t.Year(),
		Month:     month,
		MonthName: t.Month().String(),
		Quarter:   (month-1)/3 + 1,
	}, true
}
