// Package export writes series as CSV and XLSX downloads.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
)

// bom marks the CSV as UTF-8 for spreadsheet applications.
const bom = "\ufeff"

var csvHeader = []string{"year", "label", "unit", "value"}

// ErrMalformedCSV is returned by ReadCSV for input it did not write.
var ErrMalformedCSV = errors.New("malformed series csv")

// WriteCSV writes series in long format, one row per point, series in the
// order given. Values use the shortest representation that parses back to
// the same float64.
func WriteCSV(w io.Writer, series []domain.Series) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, s := range series {
		for _, p := range s.Points {
			row := []string{
				strconv.Itoa(p.Year),
				s.Label,
				s.Unit,
				strconv.FormatFloat(p.Value, 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV parses output of WriteCSV back into series, in first-seen label
// order. Kind is not part of the file and is left empty.
func ReadCSV(r io.Reader) ([]domain.Series, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(csvHeader)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedCSV, i+1, header[i], h)
		}
	}

	var out []domain.Series
	index := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		year, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: year %q", ErrMalformedCSV, line, rec[0])
		}
		value, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value %q", ErrMalformedCSV, line, rec[3])
		}

		i, ok := index[rec[1]]
		if !ok {
			i = len(out)
			index[rec[1]] = i
			out = append(out, domain.Series{Label: rec[1], Unit: rec[2]})
		}
		out[i].Points = append(out[i].Points, domain.Point{Year: year, Value: value})
	}
	return out, nil
}
