package export

import (
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/pkg/errors"
)

const flushInterval = 100_000

func columnNode(kind models.ColumnKind) parquet.Node {
	switch kind {
	case models.KindInt:
		return parquet.Int(64)
	case models.KindFloat:
		return parquet.Leaf(parquet.DoubleType)
	case models.KindDate:
		return parquet.Date()
	default:
		return parquet.String()
	}
}

// Schema describes table as a flat parquet schema of optional columns plus a
// required member id. Parquet groups order their fields by name.
func Schema(table *models.MemberTable) *parquet.Schema {
	group := parquet.Group{constants.MemberID: parquet.String()}
	for _, c := range table.Columns() {
		group[c.Name] = parquet.Optional(columnNode(c.Kind))
	}
	return parquet.NewSchema("member_level", group)
}

func cellValue(v interface{}) (parquet.Value, bool) {
	switch x := v.(type) {
	case int64:
		return parquet.Int64Value(x), true
	case float64:
		return parquet.DoubleValue(x), true
	case time.Time:
		return parquet.Int32Value(int32(x.Unix() / (24 * 60 * 60))), true
	case string:
		return parquet.ByteArrayValue([]byte(x)), true
	}
	return parquet.Value{}, false
}

// WriteParquet writes table with snappy compression.
func WriteParquet(path string, table *models.MemberTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "create member parquet %s", path)
	}

	schema := Schema(table)
	writer := parquet.NewWriter(file, schema, parquet.Compression(&parquet.Snappy))
	leaves := schema.Columns()

	for n, m := range table.Members() {
		row := make(parquet.Row, 0, len(leaves))
		for i, path := range leaves {
			name := path[0]
			if name == constants.MemberID {
				row = append(row, parquet.ByteArrayValue([]byte(m)).Level(0, 0, i))
				continue
			}
			cell, _ := table.Get(m, name)
			if v, ok := cellValue(cell); ok {
				row = append(row, v.Level(0, 1, i))
			} else {
				row = append(row, parquet.NullValue().Level(0, 0, i))
			}
		}
		if _, err := writer.WriteRows([]parquet.Row{row}); err != nil {
			file.Close()
			return errors.Wrapf(err, "write member row %s", m)
		}
		if (n+1)%flushInterval == 0 {
			if err := writer.Flush(); err != nil {
				file.Close()
				return errors.Wrap(err, "flush member rows")
			}
		}
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return errors.Wrap(err, "close member writer")
	}
	return file.Close()
}
