package rowsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVSource reads rows from an order-export CSV. The first record is the
// header; every following record becomes one Row keyed by the trimmed
// header names.
type CSVSource struct {
	r *csv.Reader

	// SkippedRows counts records the CSV parser could not decode.
	SkippedRows int
}

func NewCSVSource(r io.Reader) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports are occasionally ragged
	return &CSVSource{r: cr}
}

func (s *CSVSource) ReadAll(ctx context.Context) ([]Row, error) {
	header, err := s.r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.SkippedRows++
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
