package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Primary-CSV column names. They mirror the export format, so a previously
// exported season can be re-imported unchanged.
const (
	colRegID      = "reg_id"
	colUsername   = "user__username"
	colPlayerName = "player_name"
	colFatherName = "father_name"
	colDOB        = "dob"
	colGender     = "gender"
	colTShirt     = "tshirt_size"
	colOccupation = "occupation"
	colMobile     = "mobile"
	colWhatsapp   = "wathsapp_number"
	colEmail      = "email"
	colAdhar      = "adhar_card"
	colImage      = "player_image"
	colDistrict   = "district"
	colZone       = "zone"
	colPinCode    = "pin_code"
	colAddress    = "address"
	colFirstPref  = "first_preference"
	colBattingArm = "batting_arm"
	colRole       = "role"
	colIsPaid     = "is_paid"
	colTxID       = "tx_id"
	colIsSelected = "is_selected"
	colPoints     = "points"
)

// table is a parsed primary CSV: records addressable by header name.
type table struct {
	index   map[string]int
	records [][]string
}

// parseTable reads the primary CSV. Only a missing or unreadable header
// aborts the parse; individual rows fail later, during row processing.
func parseTable(data []byte) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, record)
	}

	return &table{index: index, records: records}, nil
}

// get returns the named column of a record, erroring when the column is
// absent from the header or the record is too short. The error surfaces as a
// row-level skip, not a job failure.
func (t *table) get(record []string, column string) (string, error) {
	i, ok := t.index[column]
	if !ok || i >= len(record) {
		return "", fmt.Errorf("missing column %q", column)
	}
	return record[i], nil
}

// getTrimmed is get with surrounding whitespace removed.
func (t *table) getTrimmed(record []string, column string) (string, error) {
	v, err := t.get(record, column)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// optional returns the named column or "" when it is absent.
func (t *table) optional(record []string, column string) string {
	v, err := t.get(record, column)
	if err != nil {
		return ""
	}
	return v
}

// parseFlag parses a boolean-as-integer column. Only the literal values 0
// and 1 are accepted.
func parseFlag(raw, column string) (bool, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || (n != 0 && n != 1) {
		return false, fmt.Errorf("column %q: expected 0 or 1, got %q", column, raw)
	}
	return n == 1, nil
}
