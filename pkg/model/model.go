package model

import (
	"math"
	"sort"
	"sync"
)

// BayesModel is a Naive Bayes classifier over categorical and continuous
// attributes. It starts in training mode, accepting rows through Ingest. The
// first call to any derived statistic freezes the model: the statistics are
// computed once and further ingestion fails with ErrModelTrained.
type BayesModel struct {
	mu      sync.Mutex
	agg     *TrainingAggregator
	trained bool

	once    sync.Once
	derived *derivedStats
}

type derivedStats struct {
	labels       []string // sorted, drives the tie-break in Classify
	classCounts  map[string]int
	priors       map[string]float64
	conditionals map[evidenceKey]float64
	means        map[columnKey]float64
	stdDevs      map[columnKey]float64
}

func NewBayesModel() *BayesModel {
	return &BayesModel{agg: NewTrainingAggregator()}
}

// Ingest adds a training row. It is safe to call from multiple goroutines.
func (m *BayesModel) Ingest(row TrainingRow) error {
	if row.Label == Unclassified {
		return ErrEmptyLabel
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trained {
		return ErrModelTrained
	}
	m.agg.Ingest(row)
	return nil
}

// Trained reports whether the derived statistics have been computed.
func (m *BayesModel) Trained() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trained
}

// Rows returns the number of ingested training rows.
func (m *BayesModel) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agg.Rows()
}

// Labels returns the known class labels in lexicographic order.
func (m *BayesModel) Labels() []string {
	d := m.stats()
	result := make([]string, len(d.labels))
	copy(result, d.labels)
	return result
}

func (m *BayesModel) stats() *derivedStats {
	m.once.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.trained = true
		m.derived = derive(m.agg)
	})
	return m.derived
}

func derive(agg *TrainingAggregator) *derivedStats {
	d := &derivedStats{
		labels:       agg.Labels(),
		classCounts:  make(map[string]int, len(agg.classCounts)),
		priors:       make(map[string]float64, len(agg.classCounts)),
		conditionals: make(map[evidenceKey]float64, len(agg.categoricalCounts)),
		means:        make(map[columnKey]float64, len(agg.continuousSums)),
		stdDevs:      make(map[columnKey]float64, len(agg.continuousValues)),
	}
	sort.Strings(d.labels)

	total := float64(agg.Rows())
	for label, count := range agg.classCounts {
		d.classCounts[label] = count
		d.priors[label] = float64(count) / total
	}

	for key, count := range agg.categoricalCounts {
		d.conditionals[key] = float64(count) / float64(agg.classCounts[key.label])
	}

	for key, sum := range agg.continuousSums {
		count := agg.classCounts[key.label]
		mean := sum / float64(count)
		d.means[key] = mean
		if count < 2 {
			continue
		}
		squares := 0.0
		for _, v := range agg.continuousValues[key] {
			squares += (v - mean) * (v - mean)
		}
		d.stdDevs[key] = math.Sqrt(squares / float64(count-1))
	}
	return d
}

// PriorProbability returns the share of training rows labeled with label.
func (m *BayesModel) PriorProbability(label string) (float64, error) {
	d := m.stats()
	prior, ok := d.priors[label]
	if !ok {
		return 0, &UnknownLabelError{Label: label}
	}
	return prior, nil
}

// ConditionalProbability returns the share of rows of class label holding value
// at the 1-indexed categorical column. Unobserved evidence is reported as a
// MissingEvidenceError rather than a zero probability.
func (m *BayesModel) ConditionalProbability(label string, column int, value string) (float64, error) {
	d := m.stats()
	if _, ok := d.classCounts[label]; !ok {
		return 0, &UnknownLabelError{Label: label}
	}
	p, ok := d.conditionals[evidenceKey{label: label, column: column, value: value}]
	if !ok {
		return 0, &MissingEvidenceError{Label: label, Column: column, Value: value}
	}
	return p, nil
}

// Mean returns the mean of the 1-indexed continuous column over the rows of class label.
func (m *BayesModel) Mean(label string, column int) (float64, error) {
	d := m.stats()
	if _, ok := d.classCounts[label]; !ok {
		return 0, &UnknownLabelError{Label: label}
	}
	return d.means[columnKey{label: label, column: column}], nil
}

// SampleStandardDeviation returns the Bessel corrected standard deviation of
// the 1-indexed continuous column over the rows of class label. Classes with a
// single row, or with no spread at all, fail with a DegenerateClassError.
func (m *BayesModel) SampleStandardDeviation(label string, column int) (float64, error) {
	d := m.stats()
	count, ok := d.classCounts[label]
	if !ok {
		return 0, &UnknownLabelError{Label: label}
	}
	stdDev := d.stdDevs[columnKey{label: label, column: column}]
	if count < 2 || stdDev == 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return 0, &DegenerateClassError{Label: label, Column: column, Count: count}
	}
	return stdDev, nil
}
