// Package ingest implements the CSV ingestion pipeline: it reconciles a
// primary registration CSV, plus an optional points CSV, against the record
// store for one season. Jobs are executed on a single worker slot so no two
// ingestion runs ever interleave.
package ingest

import (
	"fmt"

	"github.com/google/uuid"
)

// Job is one ingestion unit of work: the raw bytes of the primary CSV, the
// optional points CSV, and the season the rows belong to. Jobs live only in
// memory; a process restart loses queued jobs.
type Job struct {
	SeasonID uuid.UUID

	// Data is the primary CSV, UTF-8 with a header row.
	Data []byte

	// PointsData is the optional secondary CSV (header "reg_id,points").
	// Values here take precedence over the primary CSV's points column.
	PointsData []byte
}

// Summary reports the outcome of one ingestion run. It is logged by the
// worker once the run finishes; the submitting request has long returned.
type Summary struct {
	Created         int
	Updated         int
	AccountsCreated int
	Skipped         int
}

// String renders the summary in the form the worker logs.
func (s *Summary) String() string {
	return fmt.Sprintf("%d registrations created, %d updated, %d accounts created, %d rows skipped",
		s.Created, s.Updated, s.AccountsCreated, s.Skipped)
}
