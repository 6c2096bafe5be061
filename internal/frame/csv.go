package frame

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a comma-separated table whose first record is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("csv: empty file")
		}
		return nil, eris.Wrap(err, "csv: read header")
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read record %d", len(records)+1)
		}
		records = append(records, rec)
	}

	return FromRecords(header, records)
}
