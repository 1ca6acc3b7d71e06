// Package starschema holds the budget/realized fact tables and their
// dimension tables. JSON names follow the dashboard contract.
package starschema

// BudgetFact is one budgeted cost line ("fato orçamento").
type BudgetFact struct {
	ID              string  `json:"id"`
	Year            int     `json:"ano"`
	Month           int     `json:"mes"`
	Date            string  `json:"data"`
	MicroMarketCode string  `json:"codigoMicroMercado"`
	AccountCode     string  `json:"codigoConta"`
	BudgetedAmount  float64 `json:"vlrOrcado"`
}

// RealizedFact is one realized cost line ("fato realizado").
type RealizedFact struct {
	ID              string  `json:"id"`
	Year            int     `json:"ano"`
	Month           int     `json:"mes"`
	Date            string  `json:"data"`
	MicroMarketCode string  `json:"codigoMicroMercado"`
	AccountCode     string  `json:"codigoConta"`
	Supplier        string  `json:"razaoSocial"`
	RealizedAmount  float64 `json:"valorCustoTotal"`
	CostHistory     string  `json:"historicoCusto"`
}

type CalendarDim struct {
	Date      string `json:"data"`
	Year      int    `json:"ano"`
	Month     int    `json:"mes"`
	MonthName string `json:"nomeMes"`
	Quarter   int    `json:"trimestre"`
}

// StructureDim describes a micro market. Only the code is known from the
// facts; the hierarchy columns stay blank.
type StructureDim struct {
	MicroMarketCode string `json:"codigoMicroMercado"`
	MicroMarketName string `json:"nomeMicroMercado"`
	Nucleus         string `json:"nucleo"`
	MicroNucleus    string `json:"microNucleo"`
	Branch          string `json:"filial"`
	Market          string `json:"mercado"`
}

type AccountDim struct {
	AccountCode       string `json:"codigoConta"`
	Package           string `json:"pacote"`
	SubPackage        string `json:"subpacote"`
	ManagementAccount string `json:"contaGerencial"`
	LedgerAccount     string `json:"contaContabil"`
}

type SupplierDim struct {
	Supplier     string `json:"razaoSocial"`
	SupplierType string `json:"tipoFornecedor"`
}

// Dimensions groups the four dimension tables derived from one ingestion.
type Dimensions struct {
	Calendar  []CalendarDim
	Structure []StructureDim
	Accounts  []AccountDim
	Suppliers []SupplierDim
}
