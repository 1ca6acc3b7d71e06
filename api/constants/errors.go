package constants

// ============================================================================
// AUTHENTICATION
// ============================================================================

const (
	ErrUnauthorized = "Não autorizado"
)

// ============================================================================
// UPLOAD
// ============================================================================

const (
	ErrMissingFile      = "Arquivo não enviado. Use o campo 'file'."
	ErrUploadTooLarge   = "Arquivo excede o tamanho máximo permitido"
	ErrUnreadableUpload = "Não foi possível ler a planilha: %v"
	ErrUploadFailed     = "Failed to process raw Excel: %v"
	MsgUploadSuccess    = "Raw Excel processed and saved successfully. Processed %d orçamento and %d realizado records."
)

// ============================================================================
// METRICS
// ============================================================================

const (
	ErrInvalidQuery  = "Parâmetros inválidos: %v"
	ErrMetricsFailed = "Erro ao calcular métricas: %v"
	ErrInvalidFormat = "Formato de exportação inválido, use xlsx ou pdf"
	ErrExportFailed  = "Erro ao gerar relatório: %v"
)

// ============================================================================
// ROUTING
// ============================================================================

const (
	ErrRouteNotFound    = "Rota não encontrada"
	ErrMethodNotAllowed = "Method Not Allowed"
)
