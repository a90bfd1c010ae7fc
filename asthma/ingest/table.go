package ingest

/******************************************************************************
This package is responsible for reading claim and pharmacy extracts.
Contents:
1. table.go    in-memory table and file kind detection
2. read.go     parquet and csv readers
3. schema.go   reference schema comparison
4. validate.go value checks on claim and pharmacy tables
5. convert.go  table rows to models.ClaimRecord and models.DrugFill
******************************************************************************/

import (
	"path/filepath"
	"strings"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
)

// Table is a file read into memory as text. Null cells are "".
type Table struct {
	Path    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable normalizes column names and nulls.
func NewTable(path string, columns []string, rows [][]string) *Table {
	t := &Table{Path: path, Columns: make([]string, len(columns)), Rows: rows, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		name := codes.NormalizeColumnName(c)
		t.Columns[i] = name
		t.index[name] = i
	}
	for _, row := range rows {
		for i, v := range row {
			if codes.IsNull(v) {
				row[i] = ""
			}
		}
	}
	return t
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Values returns a copy of one column.
func (t *Table) Values(column string) []string {
	i := t.Index(column)
	if i < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// RequireColumns fails with MissingColumnError on the first absent column.
func RequireColumns(t *Table, stage string, columns ...string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return &asthmaErrors.MissingColumnError{Column: c, Stage: stage}
		}
	}
	return nil
}

// FileKind detects claim and pharmacy extracts from the file name.
func FileKind(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "claim"):
		return constants.KindClaim
	case strings.Contains(name, "pharma"):
		return constants.KindPharmacy
	default:
		return constants.KindUnknown
	}
}
