package errors

import (
	"fmt"
	"strings"
)

// SchemaMismatchError is returned when an input file's columns or types do not
// match the reference schema for its kind.
type SchemaMismatchError struct {
	Path        string
	Kind        string
	Differences []string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Differences) == 0 {
		return fmt.Sprintf("schema mismatch for %s (kind %q)", e.Path, e.Kind)
	}
	return fmt.Sprintf("schema mismatch for %s (kind %q): %s", e.Path, e.Kind, strings.Join(e.Differences, "; "))
}

type UnsupportedFileFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFileFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s: the data has to be in the .parquet format", e.Extension, e.Path)
}

// MissingColumnError names a column a stage needs that the table lacks.
type MissingColumnError struct {
	Column string
	Stage  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s cannot be calculated without %q", e.Stage, e.Column)
}

// MissingValueMismatchError flags a diagnosis or procedure column whose null
// ICD versions are not a subset of its blank codes. Needs manual review.
type MissingValueMismatchError struct {
	Column        string
	VersionColumn string
	Rows          []int
}

func (e *MissingValueMismatchError) Error() string {
	return fmt.Sprintf("%s needs manual check for missing values: %d rows have a null %s but a non-blank code",
		e.Column, len(e.Rows), e.VersionColumn)
}

type ValidationError struct {
	Err error
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation Error. Msg: %s, Err: %s", e.Msg, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// VisitTypeOverlapError means two visit type sets share visit ids after
// priority resolution. This is a logic error, not a data error.
type VisitTypeOverlapError struct {
	First    string
	Second   string
	VisitIDs []string
}

func (e *VisitTypeOverlapError) Error() string {
	if len(e.VisitIDs) == 0 {
		return fmt.Sprintf("visit types %s and %s overlap", e.First, e.Second)
	}
	return fmt.Sprintf("visit types %s and %s overlap on %d visits (e.g. %s)",
		e.First, e.Second, len(e.VisitIDs), e.VisitIDs[0])
}

// RemapSkippedError records that member id consolidation was abandoned
// because it would not reduce the number of distinct ids. It is not fatal.
type RemapSkippedError struct {
	Before int
	After  int
}

func (e *RemapSkippedError) Error() string {
	return fmt.Sprintf("mapping multiple Medicaid IDs terminated: distinct ids %d -> %d", e.Before, e.After)
}
