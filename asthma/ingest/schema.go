package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/pchp/asthma-etl/asthma/constants"
	asthmaErrors "github.com/pchp/asthma-etl/asthma/errors"
	"github.com/pkg/errors"
)

// SchemaField is one entry of a reference schema file.
type SchemaField struct {
	Name string `json:"column_name"`
	Type string `json:"data_type"`
}

// References holds the reference schema file for each file kind.
type References map[string]string

// ReadSchema returns the columns of a parquet file with arrow style type
// names, e.g. string, int64, date32[day].
func ReadSchema(path string) ([]SchemaField, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != extParquet {
		return nil, &asthmaErrors.UnsupportedFileFormatError{Path: path, Extension: ext}
	}
	pf, closeFile, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	fields := pf.Schema().Fields()
	out := make([]SchemaField, len(fields))
	for i, f := range fields {
		out[i] = SchemaField{Name: f.Name(), Type: arrowType(f.Type())}
	}
	return out, nil
}

func arrowType(t parquet.Type) string {
	lt := t.LogicalType()
	if lt == nil {
		lt = &format.LogicalType{}
	}
	switch t.Kind() {
	case parquet.Boolean:
		return "bool"
	case parquet.Int32:
		switch {
		case lt.Date != nil:
			return "date32[day]"
		case lt.Time != nil:
			return "time32[ms]"
		case lt.Integer != nil:
			return intType(lt.Integer)
		}
		return "int32"
	case parquet.Int64:
		switch {
		case lt.Timestamp != nil:
			unit := timeUnit(lt.Timestamp.Unit)
			if lt.Timestamp.IsAdjustedToUTC {
				return fmt.Sprintf("timestamp[%s, tz=UTC]", unit)
			}
			return fmt.Sprintf("timestamp[%s]", unit)
		case lt.Time != nil:
			return fmt.Sprintf("time64[%s]", timeUnit(lt.Time.Unit))
		case lt.Integer != nil:
			return intType(lt.Integer)
		}
		return "int64"
	case parquet.Int96:
		return "timestamp[ns]"
	case parquet.Float:
		return "float"
	case parquet.Double:
		return "double"
	case parquet.ByteArray:
		switch {
		case lt.UTF8 != nil, lt.Enum != nil, lt.Json != nil:
			return "string"
		case lt.Decimal != nil:
			return fmt.Sprintf("decimal128(%d, %d)", lt.Decimal.Precision, lt.Decimal.Scale)
		}
		return "binary"
	case parquet.FixedLenByteArray:
		return fmt.Sprintf("fixed_size_binary[%d]", t.Length())
	}
	return t.String()
}

func intType(it *format.IntType) string {
	if it.IsSigned {
		return fmt.Sprintf("int%d", it.BitWidth)
	}
	return fmt.Sprintf("uint%d", it.BitWidth)
}

func timeUnit(u format.TimeUnit) string {
	switch {
	case u.Millis != nil:
		return "ms"
	case u.Micros != nil:
		return "us"
	default:
		return "ns"
	}
}

// LoadReference reads a JSON array of {"column_name", "data_type"} objects.
func LoadReference(path string) ([]SchemaField, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read reference schema %s", path)
	}
	var fields []SchemaField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrapf(err, "failed to parse reference schema %s", path)
	}
	return fields, nil
}

// CompareSchemas lists every position where got differs from want.
func CompareSchemas(want, got []SchemaField) []string {
	var diffs []string
	if len(want) != len(got) {
		diffs = append(diffs, fmt.Sprintf("expected %d columns, found %d", len(want), len(got)))
	}
	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			diffs = append(diffs, fmt.Sprintf("column %d: missing %s", i, want[i].Name))
		case i >= len(want):
			diffs = append(diffs, fmt.Sprintf("column %d: unexpected %s", i, got[i].Name))
		case want[i].Name != got[i].Name:
			diffs = append(diffs, fmt.Sprintf("column %d: expected %s, found %s", i, want[i].Name, got[i].Name))
		case want[i].Type != got[i].Type:
			diffs = append(diffs, fmt.Sprintf("column %s: expected type %s, found %s", want[i].Name, want[i].Type, got[i].Type))
		}
	}
	return diffs
}

// ValidateSchema compares the schema of a parquet file with a reference.
func ValidateSchema(path, referencePath string) error {
	got, err := ReadSchema(path)
	if err != nil {
		return err
	}
	want, err := LoadReference(referencePath)
	if err != nil {
		return err
	}
	if diffs := CompareSchemas(want, got); len(diffs) > 0 {
		return &asthmaErrors.SchemaMismatchError{Path: path, Kind: FileKind(path), Differences: diffs}
	}
	return nil
}

// Validate picks the reference for the kind of path and validates against it.
func (r References) Validate(path string) error {
	kind := FileKind(path)
	ref, ok := r[kind]
	if kind == constants.KindUnknown || !ok || ref == "" {
		return &asthmaErrors.SchemaMismatchError{
			Path:        path,
			Kind:        kind,
			Differences: []string{"no reference schema for this file kind"},
		}
	}
	return ValidateSchema(path, ref)
}
