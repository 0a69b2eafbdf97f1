package model

// TrainingRow is a single labeled example as produced by a DataParser.
type TrainingRow struct {
	Label       string
	Categorical []string
	Continuous  []float64
}

// columnKey addresses a 1-indexed continuous column of a class.
type columnKey struct {
	label  string
	column int
}

// evidenceKey addresses an observed categorical value of a class at a 1-indexed column.
type evidenceKey struct {
	label  string
	column int
	value  string
}

// TrainingAggregator accumulates the raw counts and sums needed to derive the
// probability model. It computes nothing itself and is not safe for concurrent use.
type TrainingAggregator struct {
	classCounts       map[string]int
	labels            []string // in order of discovery
	categoricalCounts map[evidenceKey]int
	continuousSums    map[columnKey]float64
	continuousValues  map[columnKey][]float64
	rows              int
}

func NewTrainingAggregator() *TrainingAggregator {
	return &TrainingAggregator{
		classCounts:       map[string]int{},
		categoricalCounts: map[evidenceKey]int{},
		continuousSums:    map[columnKey]float64{},
		continuousValues:  map[columnKey][]float64{},
	}
}

// Ingest adds a row to the accumulated statistics. Categorical and continuous
// attributes are numbered from 1 in two independent ranges.
func (a *TrainingAggregator) Ingest(row TrainingRow) {
	if _, ok := a.classCounts[row.Label]; !ok {
		a.labels = append(a.labels, row.Label)
	}
	a.classCounts[row.Label]++
	a.rows++

	for i, value := range row.Categorical {
		a.categoricalCounts[evidenceKey{label: row.Label, column: i + 1, value: value}]++
	}
	for i, value := range row.Continuous {
		key := columnKey{label: row.Label, column: i + 1}
		a.continuousValues[key] = append(a.continuousValues[key], value)
		a.continuousSums[key] += value
	}
}

// Rows returns the number of ingested rows.
func (a *TrainingAggregator) Rows() int {
	return a.rows
}

// Labels returns the class labels in the order they were first seen.
func (a *TrainingAggregator) Labels() []string {
	result := make([]string, len(a.labels))
	copy(result, a.labels)
	return result
}

func (a *TrainingAggregator) ClassCount(label string) (int, bool) {
	count, ok := a.classCounts[label]
	return count, ok
}

// CategoricalCount returns how often value was seen at column for label. Unseen
// combinations count as zero.
func (a *TrainingAggregator) CategoricalCount(label string, column int, value string) int {
	return a.categoricalCounts[evidenceKey{label: label, column: column, value: value}]
}

func (a *TrainingAggregator) ContinuousSum(label string, column int) float64 {
	return a.continuousSums[columnKey{label: label, column: column}]
}

func (a *TrainingAggregator) ContinuousValues(label string, column int) []float64 {
	return a.continuousValues[columnKey{label: label, column: column}]
}
