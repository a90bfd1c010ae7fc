package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
	"github.com/go-gota/gota/dataframe"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pkg/errors"
)

const (
	extParquet = ".parquet"
	extCSV     = ".csv"
)

const readBatch = 512

// ReadTable reads a parquet or csv extract. Parquet dates and timestamps are
// rendered as YYYY-MM-DD.
func ReadTable(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extParquet:
		return readParquet(path)
	case extCSV:
		return readCSV(path)
	default:
		return nil, &asthmaErrors.UnsupportedFileFormatError{Path: path, Extension: ext}
	}
}

func openParquet(path string) (*parquet.File, func(), error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "failed to read parquet footer of %s", path)
	}
	return pf, func() { f.Close() }, nil
}

func readParquet(path string) (*Table, error) {
	pf, closeFile, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return nil, errors.Errorf("%s: nested column %s is not supported", path, field.Name())
		}
		columns[i] = field.Name()
	}

	var rows [][]string
	buf := make([]parquet.Row, readBatch)
	for _, rg := range pf.RowGroups() {
		reader := rg.Rows()
		for {
			n, err := reader.ReadRows(buf)
			for _, row := range buf[:n] {
				out := make([]string, len(fields))
				for _, v := range row {
					c := v.Column()
					if c < 0 || c >= len(out) || v.IsNull() {
						continue
					}
					out[c] = formatValue(v, fields[c].Type())
				}
				rows = append(rows, out)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				reader.Close()
				return nil, errors.Wrapf(err, "failed to read rows of %s", path)
			}
		}
		reader.Close()
	}
	return NewTable(path, columns, rows), nil
}

func formatValue(v parquet.Value, t parquet.Type) string {
	lt := t.LogicalType()
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return time.Unix(int64(v.Int32())*24*60*60, 0).UTC().Format(constants.DateLayout)
		}
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			return timestamp(v.Int64(), lt.Timestamp.Unit).Format(constants.DateLayout)
		}
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func timestamp(v int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(v).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(v).UTC()
	default:
		return time.Unix(0, v).UTC()
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	// Trim the Byte Order Marker if it's present
	df := dataframe.ReadCSV(utfbom.SkipOnly(f), dataframe.HasHeader(true), dataframe.DetectTypes(false))
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "failed to read %s", path)
	}

	records := df.Records()
	if len(records) == 0 {
		return NewTable(path, nil, nil), nil
	}
	return NewTable(path, records[0], records[1:]), nil
}
