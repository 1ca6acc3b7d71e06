package config

const (
	DefaultTimeZone       = "America/Sao_Paulo"
	DefaultReloadSchedule = "*/15 * * * *"
	DefaultHTTPPort       = 8000
	MaxUploadBytes        = 32 << 20

	// Sheet layout: row 0 is a title banner, row 1 holds the column labels and
	// column A is left blank by the source template.
	HeaderRowIndex    = 1
	FirstDataRowIndex = 2
	SkippedColumns    = 1

	DateFormat = "2006-01-02"

	BudgetIDPrefix   = "orc_"
	RealizedIDPrefix = "real_"

	DefaultSupplierName = "Fornecedor"
	DefaultSupplierType = "Fornecedor"
	HistorySeparator    = " - "

	TopSuppliersLimit = 10
	DefaultPeriod     = "monthly"
)

// Column labels of the cost sheet.
const (
	ColYear                  = "Ano"
	ColMonth                 = "Mês"
	ColMarket                = "Mercado"
	ColNucleus               = "Núcleo"
	ColMicroNucleus          = "Micro Núcleo"
	ColDepartment            = "Departamento"
	ColBranch                = "Filial"
	ColMicroMarketCode       = "Código Micro Mercado ou UC"
	ColMicroMarket           = "Micro Mercado ou UC"
	ColCostFPO               = "Custos FPO (novo)"
	ColCostFPMSVO            = "Custos FPMSVO"
	ColCostFPMSVOExecutive   = "Custos FPMSVO Executivo"
	ColManagementAccountCode = "Código Conta Gerencial"
	ColManagementAccount     = "Conta Gerencial"
	ColLedgerAccountCode     = "Código da Conta Contábil"
	ColLedgerAccount         = "Conta Contabil"
	ColVA                    = "VA"
	ColBudgeted              = "Vlr Orçado"
	ColRealized              = "Valor DRE"
	ColPackage               = "Pacote"
	ColSubPackage            = "Subpacote"
)
