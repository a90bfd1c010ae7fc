package models

import (
	"sort"
	"time"
)

// ColumnKind is the storage type of a member table column.
type ColumnKind int

const (
	KindInt ColumnKind = iota
	KindFloat
	KindDate
	KindString
)

type Column struct {
	Name string
	Kind ColumnKind
}

// MemberTable is the member-level output keyed by canonical member id.
// Cells hold int64, float64, time.Time or string; a missing cell is null.
type MemberTable struct {
	columns []Column
	index   map[string]int
	members []string
	rows    map[string]map[string]interface{}
}

// NewMemberTable creates a table with one empty row per distinct member, in
// the order given.
func NewMemberTable(members []string, columns ...Column) *MemberTable {
	t := &MemberTable{
		index: make(map[string]int),
		rows:  make(map[string]map[string]interface{}, len(members)),
	}
	for _, m := range members {
		t.addMember(m)
	}
	t.AddColumns(columns...)
	return t
}

func (t *MemberTable) addMember(member string) {
	if _, ok := t.rows[member]; ok {
		return
	}
	t.members = append(t.members, member)
	t.rows[member] = make(map[string]interface{})
}

// AddColumns appends columns not already present.
func (t *MemberTable) AddColumns(columns ...Column) {
	for _, c := range columns {
		if _, ok := t.index[c.Name]; ok {
			continue
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
}

func (t *MemberTable) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *MemberTable) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

func (t *MemberTable) Members() []string {
	return append([]string(nil), t.members...)
}

func (t *MemberTable) Len() int {
	return len(t.members)
}

func (t *MemberTable) HasMember(member string) bool {
	_, ok := t.rows[member]
	return ok
}

// Set stores a cell. Unknown members or columns are ignored and reported
// with false, which gives sub-tables left join semantics.
func (t *MemberTable) Set(member, column string, value interface{}) bool {
	row, ok := t.rows[member]
	if !ok {
		return false
	}
	if _, ok := t.index[column]; !ok {
		return false
	}
	if value == nil {
		delete(row, column)
		return true
	}
	row[column] = value
	return true
}

// Get returns a cell and whether it is non-null.
func (t *MemberTable) Get(member, column string) (interface{}, bool) {
	row, ok := t.rows[member]
	if !ok {
		return nil, false
	}
	v, ok := row[column]
	return v, ok
}

func (t *MemberTable) Int(member, column string) (int64, bool) {
	v, ok := t.Get(member, column)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

func (t *MemberTable) Float(member, column string) (float64, bool) {
	v, ok := t.Get(member, column)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (t *MemberTable) Date(member, column string) (time.Time, bool) {
	v, ok := t.Get(member, column)
	if !ok {
		return time.Time{}, false
	}
	d, ok := v.(time.Time)
	return d, ok
}

// FillZero sets null int and float cells of the named columns to zero.
func (t *MemberTable) FillZero(columns ...string) {
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			continue
		}
		var zero interface{}
		switch c.Kind {
		case KindInt:
			zero = int64(0)
		case KindFloat:
			zero = float64(0)
		default:
			continue
		}
		for _, m := range t.members {
			if _, ok := t.rows[m][name]; !ok {
				t.rows[m][name] = zero
			}
		}
	}
}

// Join returns a new table holding t's rows with other's columns attached.
// With outer set, members only present in other are appended as well. A
// cell present in both tables keeps t's value.
func (t *MemberTable) Join(other *MemberTable, outer bool) *MemberTable {
	out := NewMemberTable(t.members, t.columns...)
	out.AddColumns(other.columns...)
	if outer {
		for _, m := range other.members {
			out.addMember(m)
		}
	}
	for _, src := range []*MemberTable{other, t} {
		for m, row := range src.rows {
			for c, v := range row {
				out.Set(m, c, v)
			}
		}
	}
	return out
}

// SortMembers orders rows by less.
func (t *MemberTable) SortMembers(less func(a, b string) bool) {
	sort.SliceStable(t.members, func(i, j int) bool {
		return less(t.members[i], t.members[j])
	})
}
