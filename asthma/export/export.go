// Package export writes member level tables and the multiple id audit.
package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/pkg/errors"
)

// AuditName is the member name column of the audit table.
const AuditName = "name"

// FormatCell renders a member table cell as text. Null cells are "".
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(constants.DateLayout)
	case string:
		return x
	default:
		return ""
	}
}

// WriteMemberTable writes table to path as CSV or parquet, chosen by the
// file extension.
func WriteMemberTable(path string, table *models.MemberTable) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return WriteCSV(path, table)
	case ".parquet":
		return WriteParquet(path, table)
	default:
		return &asthmaErrors.UnsupportedFileFormatError{Path: path, Extension: ext}
	}
}

// ToDataFrame lays the table out with member_medicaid_id first, then the
// table's columns in order.
func ToDataFrame(table *models.MemberTable) dataframe.DataFrame {
	members := table.Members()
	cols := []series.Series{series.New(members, series.String, constants.MemberID)}
	for _, c := range table.Columns() {
		values := make([]string, len(members))
		for i, m := range members {
			v, _ := table.Get(m, c.Name)
			values[i] = FormatCell(v)
		}
		cols = append(cols, series.New(values, series.String, c.Name))
	}
	return dataframe.New(cols...)
}

// WriteCSV writes table with a header row.
func WriteCSV(path string, table *models.MemberTable) error {
	return writeDataFrame(path, ToDataFrame(table))
}

// WriteAudit writes the members found with more than one raw id.
func WriteAudit(path string, audit []models.MultipleIDAudit) error {
	ids := make([]string, len(audit))
	names := make([]string, len(audit))
	for i, a := range audit {
		ids[i], names[i] = a.MemberID, a.Name
	}
	df := dataframe.New(
		series.New(ids, series.String, constants.MemberID),
		series.New(names, series.String, AuditName),
	)
	return writeDataFrame(path, df)
}

func writeDataFrame(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, "failed to build output table")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
