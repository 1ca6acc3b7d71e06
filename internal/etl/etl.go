// Package etl turns an uploaded cost sheet into a star-schema snapshot:
// extract rows, build budget/realized facts, derive dimensions.
package etl

import (
	"errors"
	"fmt"
	"log"
	"time"

	"OrcaBI/internal/checksum"
	"OrcaBI/internal/logger"
	"OrcaBI/internal/starschema"
	"OrcaBI/internal/workbook"

	"github.com/google/uuid"
)

// ErrUnreadableInput marks failures that abort the whole ingestion.
var ErrUnreadableInput = errors.New("unreadable spreadsheet")

// Stats summarises one ingestion.
type Stats struct {
	RowsRead    int `json:"rows_read"`
	RowsValid   int `json:"rows_valid"`
	RowsSkipped int `json:"rows_skipped"`
	Budget      int `json:"orcamento"`
	Realized    int `json:"realizado"`
}

// Build runs the pure part of the pipeline over a decoded grid. The same grid
// always produces identical facts and dimensions.
func Build(grid workbook.Grid) (*starschema.Snapshot, Stats, error) {
	records, read, err := Extract(grid)
	if err != nil {
		return nil, Stats{}, err
	}
	facts := BuildFacts(records)
	dims := DeriveDimensions(facts.Budget, facts.Realized)

	stats := Stats{
		RowsRead:    read,
		RowsValid:   len(records),
		RowsSkipped: facts.Skipped,
		Budget:      len(facts.Budget),
		Realized:    len(facts.Realized),
	}
	snap := &starschema.Snapshot{
		Budget:     facts.Budget,
		Realized:   facts.Realized,
		Dimensions: dims,
		Meta: starschema.Meta{
			RowsRead:    stats.RowsRead,
			RowsValid:   stats.RowsValid,
			RowsSkipped: stats.RowsSkipped,
		},
	}
	return snap, stats, nil
}

// Ingest decodes the workbook bytes and builds a snapshot stamped with a new
// batch id and the checksum of data. Nothing is stored; the caller decides
// whether to swap it in.
func Ingest(filename string, data []byte) (*starschema.Snapshot, Stats, error) {
	grid, err := workbook.Read(filename, data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	snap, stats, err := Build(grid)
	if err != nil {
		return nil, Stats{}, err
	}
	snap.Meta.BatchID = uuid.New().String()
	snap.Meta.Source = filename
	snap.Meta.Checksum = checksum.Sum(data)
	snap.Meta.LoadedAt = time.Now().UTC()

	msg := fmt.Sprintf("etl: batch %s from %q: %d rows read, %d valid, %d skipped, %d orcamento, %d realizado",
		snap.Meta.BatchID, filename, stats.RowsRead, stats.RowsValid, stats.RowsSkipped, stats.Budget, stats.Realized)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(msg)
	} else {
		log.Println("[INFO]", msg)
	}
	return snap, stats, nil
}

func logSkip(sheetRow int, reason string) {
	log.Printf("[WARN] etl: skipping sheet row %d: %s", sheetRow+1, reason)
}
