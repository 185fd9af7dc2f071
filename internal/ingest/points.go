package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParsePoints reads the secondary points CSV into a reg_id -> points map.
// The header row is always skipped. Unlike the primary CSV, a single
// malformed row fails the whole parse: no partial map is ever applied.
func ParsePoints(data []byte) (map[string]int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// Header row.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("read points header: %w", err)
	}

	points := make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read points row %d: %w", line, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("points row %d: expected reg_id,points, got %d fields", line, len(record))
		}

		value, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("points row %d: invalid points value %q", line, record[1])
		}
		points[strings.TrimSpace(record[0])] = value
	}

	return points, nil
}
