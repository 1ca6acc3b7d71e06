package constants

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Headers
const (
	HeaderAuthorization      = "Authorization"
	HeaderContentDisposition = "Content-Disposition"
	BearerPrefix             = "Bearer "
)

// Request fields
const (
	FormFile       = "file"
	QueryPeriod    = "period"
	QueryStartDate = "start_date"
	QueryEndDate   = "end_date"
	QuerySuppliers = "suppliers"
	QueryAccounts  = "accounts"
	QueryMarkets   = "markets"
	QueryFormat    = "format"
	FormatXLSX     = "xlsx"
	FormatPDF      = "pdf"
	ExportFileStem = "orcado_x_realizado"
)

// Response keys
const (
	ValueSuccess = "success"
	ValueError   = "error"
	ValueDetail  = "detail"
	ValueData    = "data"
	ValueMessage = "message"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	FileTimeFormat = "20060102_150405"
)
