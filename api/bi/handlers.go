// Package bi serves the budget-versus-actual endpoints: spreadsheet upload,
// dashboard metrics, report export and raw star-schema reads.
package bi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"OrcaBI/api"
	"OrcaBI/api/constants"
	"OrcaBI/internal/etl"
	"OrcaBI/internal/metrics"
	"OrcaBI/internal/report"
	"OrcaBI/internal/starschema"
)

// UploadRawExcel ingests the multipart "file" field and, on success, replaces
// the current dataset. Any failure leaves the store untouched.
func UploadRawExcel(store *starschema.Store, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				api.RespondWithError(w, http.StatusRequestEntityTooLarge, constants.ErrUploadTooLarge)
				return
			}
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingFile)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(constants.FormFile)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingFile)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf(constants.ErrUnreadableUpload, err))
			return
		}

		snap, stats, err := etl.Ingest(header.Filename, data)
		if err != nil {
			if errors.Is(err, etl.ErrUnreadableInput) {
				api.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf(constants.ErrUnreadableUpload, err))
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf(constants.ErrUploadFailed, err))
			return
		}
		store.Swap(snap)
		api.LogInfo("dataset replaced by batch %s (%s)", snap.Meta.BatchID, header.Filename)

		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			constants.ValueMessage: fmt.Sprintf(constants.MsgUploadSuccess, stats.Budget, stats.Realized),
			"batch_id":             snap.Meta.BatchID,
			"stats":                stats,
		})
	}
}

// queryFromRequest reads the metrics query parameters.
func queryFromRequest(r *http.Request) (metrics.Query, error) {
	q := r.URL.Query()
	period, err := metrics.ParsePeriod(q.Get(constants.QueryPeriod))
	if err != nil {
		return metrics.Query{}, err
	}
	query := metrics.Query{
		Period:    period,
		StartDate: q.Get(constants.QueryStartDate),
		EndDate:   q.Get(constants.QueryEndDate),
		Suppliers: metrics.ParseList(q.Get(constants.QuerySuppliers)),
		Accounts:  metrics.ParseList(q.Get(constants.QueryAccounts)),
		Markets:   metrics.ParseList(q.Get(constants.QueryMarkets)),
	}
	return query, query.Validate()
}

// computeOrRespond runs the query and writes the failure response itself,
// returning nil when it did so.
func computeOrRespond(w http.ResponseWriter, r *http.Request, engine *metrics.Engine) *metrics.Result {
	query, err := queryFromRequest(r)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf(constants.ErrInvalidQuery, err))
		return nil
	}
	res, err := engine.Compute(query)
	switch {
	case errors.Is(err, metrics.ErrNoData):
		api.RespondWithNotice(w, err.Error())
		return nil
	case err != nil:
		api.RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf(constants.ErrMetricsFailed, err))
		return nil
	}
	return res
}

func GetMetrics(engine *metrics.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res := computeOrRespond(w, r, engine); res != nil {
			api.RespondWithJSON(w, http.StatusOK, res)
		}
	}
}

// ExportMetrics renders the metrics for the same query as an xlsx workbook
// or a PDF report.
func ExportMetrics(engine *metrics.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get(constants.QueryFormat)
		if format == "" {
			format = constants.FormatXLSX
		}
		if format != constants.FormatXLSX && format != constants.FormatPDF {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFormat)
			return
		}
		res := computeOrRespond(w, r, engine)
		if res == nil {
			return
		}

		now := time.Now()
		filename := fmt.Sprintf("%s_%s.%s", constants.ExportFileStem, now.Format(constants.FileTimeFormat), format)
		w.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

		var err error
		if format == constants.FormatPDF {
			w.Header().Set(constants.ContentTypeText, constants.ContentTypePDF)
			err = report.WritePDF(w, res, now)
		} else {
			w.Header().Set(constants.ContentTypeText, constants.ContentTypeXLSX)
			err = report.WriteXLSX(w, res)
		}
		if err != nil {
			// headers may already be sent; log only
			api.LogError(constants.ErrExportFailed, err)
		}
	}
}

// GetTable serves one star-schema collection as {"data": [...]}.
func GetTable(store *starschema.Store, pick func(*starschema.Snapshot) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithPayload(w, pick(store.Current()))
	}
}

// DebugDatabases reports collection sizes and the metadata of the loaded batch.
func DebugDatabases(store *starschema.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		payload := map[string]interface{}{
			"excel_data": snap.Counts(),
			"loaded":     snap.Loaded(),
		}
		if snap.Loaded() {
			payload["batch"] = snap.Meta
		}
		api.RespondWithJSON(w, http.StatusOK, payload)
	}
}
