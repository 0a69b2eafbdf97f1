package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"nbayes/pkg/model"
)

type DataParameters struct {
	Format    *Format
	Separator rune
}

type DataError struct {
	File  string
	Line  int
	Error string
}

// BucketParser reads delimiter separated bucket files. Lines that cannot be
// parsed are skipped and recorded as DataErrors.
type BucketParser struct {
	DataParameters

	mu     sync.Mutex
	errors []DataError
}

var _ model.DataParser = &BucketParser{}

func NewBucketParser(p DataParameters) *BucketParser {
	if p.Separator == 0 {
		p.Separator = '\t'
	}
	return &BucketParser{DataParameters: p}
}

// ParseSeparator accepts a single character or one of the names "tab", "comma" and "space".
func ParseSeparator(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "space":
		return ' ', nil
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid separator %q", value)
	}
	return runes[0], nil
}

// DataErrors returns the errors collected by all ParseFile calls so far.
func (b *BucketParser) DataErrors() []DataError {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]DataError, len(b.errors))
	copy(result, b.errors)
	return result
}

func (b *BucketParser) addError(file string, line int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, DataError{File: file, Line: line, Error: err.Error()})
}

func (b *BucketParser) ParseFile(identifier string) ([]model.TrainingRow, error) {
	inputFile, err := os.Open(identifier)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()
	return b.Parse(identifier, inputFile)
}

// Parse reads rows from input, name is only used to label DataErrors.
func (b *BucketParser) Parse(name string, input io.Reader) ([]model.TrainingRow, error) {
	reader := csv.NewReader(input)
	reader.Comma = b.Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// csv trims white space separators too, which would merge empty fields
	reader.TrimLeadingSpace = !unicode.IsSpace(b.Separator)

	var result []model.TrainingRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				b.addError(name, parseErr.Line, err)
				continue
			}
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}

		row, err := parseRecord(b.Format, record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			b.addError(name, line, err)
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func parseRecord(format *Format, record []string) (model.TrainingRow, error) {
	if len(record) != format.NumColumns() {
		return model.TrainingRow{}, fmt.Errorf("expected %d columns, found %d", format.NumColumns(), len(record))
	}

	row := model.TrainingRow{
		Label:       strings.TrimSpace(record[format.ClassColumn]),
		Categorical: make([]string, format.CategoricalColumns.Size()),
		Continuous:  make([]float64, format.ContinuousColumns.Size()),
	}
	if row.Label == model.Unclassified {
		return model.TrainingRow{}, fmt.Errorf("empty class label at column %d", format.ClassColumn)
	}
	for index := 1; index <= format.CategoricalColumns.Size(); index++ {
		column := format.CategoricalColumns.IndexToColumn[index]
		row.Categorical[index-1] = strings.TrimSpace(record[column])
	}
	for index := 1; index <= format.ContinuousColumns.Size(); index++ {
		column := format.ContinuousColumns.IndexToColumn[index]
		value, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
		if err != nil {
			return model.TrainingRow{}, fmt.Errorf("error parsing continuous column %d: %w", index, err)
		}
		row.Continuous[index-1] = value
	}
	return row, nil
}
