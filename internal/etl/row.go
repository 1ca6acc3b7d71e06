package etl

import (
	"OrcaBI/internal/config"
	"OrcaBI/internal/normalize"
)

// Row is a validated record with every known column converted to its type.
type Row struct {
	Year  int
	Month int

	Market          string
	Nucleus         string
	MicroNucleus    string
	Department      string
	Branch          string
	MicroMarketCode string
	MicroMarket     string

	CostFPO             float64
	CostFPMSVO          float64
	CostFPMSVOExecutive float64

	ManagementAccountCode string
	ManagementAccount     string
	LedgerAccountCode     string
	LedgerAccount         string

	VA       float64
	Budgeted float64
	Realized float64

	Package    string
	SubPackage string
}

// Shape converts a raw record into a Row. Malformed cells degrade to zero
// values instead of failing.
func Shape(rec RawRecord) Row {
	str := func(label string) string { return normalize.String(rec.Get(label)) }
	num := func(label string) float64 { return normalize.Float(rec.Get(label)) }

	return Row{
		Year:  normalize.Int(rec.Get(config.ColYear)),
		Month: normalize.Int(rec.Get(config.ColMonth)),

		Market:          str(config.ColMarket),
		Nucleus:         str(config.ColNucleus),
		MicroNucleus:    str(config.ColMicroNucleus),
		Department:      str(config.ColDepartment),
		Branch:          str(config.ColBranch),
		MicroMarketCode: str(config.ColMicroMarketCode),
		MicroMarket:     str(config.ColMicroMarket),

		CostFPO:             num(config.ColCostFPO),
		CostFPMSVO:          num(config.ColCostFPMSVO),
		CostFPMSVOExecutive: num(config.ColCostFPMSVOExecutive),

		ManagementAccountCode: str(config.ColManagementAccountCode),
		ManagementAccount:     str(config.ColManagementAccount),
		LedgerAccountCode:     str(config.ColLedgerAccountCode),
		LedgerAccount:         str(config.ColLedgerAccount),

		VA:       num(config.ColVA),
		Budgeted: num(config.ColBudgeted),
		Realized: num(config.ColRealized),

		Package:    str(config.ColPackage),
		SubPackage: str(config.ColSubPackage),
	}
}
