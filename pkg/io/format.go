package io

import (
	"fmt"
	"strings"
)

type ColumnKind int

const (
	Comment ColumnKind = iota
	Class
	Categorical
	Continuous
)

var columnKindNames = map[string]ColumnKind{
	"comment": Comment,
	"class":   Class,
	"attr":    Categorical,
	"num":     Continuous,
}

func (k ColumnKind) String() string {
	for name, kind := range columnKindNames {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("ColumnKind(%d)", int(k))
}

// ColumnMap is a bidirectional mapping between a file column index and a 1-indexed attribute column
type ColumnMap struct {
	ColumnToIndex map[int]int
	IndexToColumn map[int]int
}

func (f ColumnMap) Set(column int, index int) {
	f.ColumnToIndex[column] = index
	f.IndexToColumn[index] = column
}

func (f ColumnMap) Size() int {
	return len(f.ColumnToIndex)
}

func NewColumnMap() ColumnMap {
	return ColumnMap{
		ColumnToIndex: map[int]int{},
		IndexToColumn: map[int]int{},
	}
}

// Format describes the layout of a bucket file.
type Format struct {
	Kinds []ColumnKind

	// ClassColumn points to the file column holding the class label
	ClassColumn int

	// CategoricalColumns maps a file column to its 1-indexed categorical attribute column
	CategoricalColumns ColumnMap

	// ContinuousColumns maps a file column to its 1-indexed continuous attribute column
	ContinuousColumns ColumnMap
}

// ParseFormat reads a column layout such as "attr num num class". Columns may be
// separated by whitespace or commas. Exactly one class column is required.
func ParseFormat(layout string) (*Format, error) {
	fields := strings.FieldsFunc(layout, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty column format")
	}

	format := &Format{
		ClassColumn:        -1,
		CategoricalColumns: NewColumnMap(),
		ContinuousColumns:  NewColumnMap(),
	}
	for i, field := range fields {
		kind, ok := columnKindNames[strings.ToLower(field)]
		if !ok {
			return nil, fmt.Errorf("unknown column kind %q at column %d", field, i)
		}
		format.Kinds = append(format.Kinds, kind)
		switch kind {
		case Class:
			if format.ClassColumn != -1 {
				return nil, fmt.Errorf("duplicate class column at column %d", i)
			}
			format.ClassColumn = i
		case Categorical:
			format.CategoricalColumns.Set(i, format.CategoricalColumns.Size()+1)
		case Continuous:
			format.ContinuousColumns.Set(i, format.ContinuousColumns.Size()+1)
		}
	}
	if format.ClassColumn == -1 {
		return nil, fmt.Errorf("column format %q has no class column", layout)
	}
	return format, nil
}

func (f *Format) NumColumns() int {
	return len(f.Kinds)
}
