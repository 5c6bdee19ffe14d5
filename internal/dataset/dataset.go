// Package dataset loads the quiz reference data and samples records from it.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
)

// Field is one named column value of a record.
type Field struct {
	Name  string
	Value string
}

// Record is one dataset row with its fields in column order.
type Record []Field

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Dataset is a table of rows sharing one header.
type Dataset struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Record returns row i as a Record.
func (d *Dataset) Record(i int) Record {
	row := d.Rows[i]
	rec := make(Record, len(d.Header))
	for j, name := range d.Header {
		var v string
		if j < len(row) {
			v = row[j]
		}
		rec[j] = Field{Name: name, Value: v}
	}
	return rec
}

// Sample picks one row uniformly at random. A nil r uses the global source.
func (d *Dataset) Sample(r *rand.Rand) (Record, error) {
	n := d.Len()
	if n == 0 {
		return nil, &ErrDataUnavailable{Err: errors.New("dataset has no rows")}
	}
	var i int
	if r != nil {
		i = r.IntN(n)
	} else {
		i = rand.IntN(n)
	}
	return d.Record(i), nil
}

// Parse reads CSV data whose first row is the header.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv has no header")
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	data := rows[1:]
	if len(data) == 0 {
		return nil, errors.New("csv has no data rows")
	}

	return &Dataset{Header: header, Rows: data}, nil
}
