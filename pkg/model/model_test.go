package model

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func petRows() []TrainingRow {
	return []TrainingRow{
		{Label: "cat", Categorical: []string{"red"}, Continuous: []float64{5.0}},
		{Label: "cat", Categorical: []string{"red"}, Continuous: []float64{7.0}},
		{Label: "dog", Categorical: []string{"blue"}, Continuous: []float64{1.0}},
		{Label: "dog", Categorical: []string{"blue"}, Continuous: []float64{2.0}},
	}
}

func newTrainedModel(t *testing.T, rows []TrainingRow) *BayesModel {
	m := NewBayesModel()
	for _, row := range rows {
		require.NoError(t, m.Ingest(row))
	}
	return m
}

func TestBayesModel_PetScenario(t *testing.T) {
	m := newTrainedModel(t, petRows())

	count, ok := m.agg.ClassCount("cat")
	require.True(t, ok)
	require.Equal(t, 2, count)
	count, ok = m.agg.ClassCount("dog")
	require.True(t, ok)
	require.Equal(t, 2, count)

	prior, err := m.PriorProbability("cat")
	require.NoError(t, err)
	require.Equal(t, 0.5, prior)

	mean, err := m.Mean("cat", 1)
	require.NoError(t, err)
	require.Equal(t, 6.0, mean)

	stdDev, err := m.SampleStandardDeviation("cat", 1)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(2), stdDev, 1e-12)

	p, err := m.ConditionalProbability("cat", 1, "red")
	require.NoError(t, err)
	require.Equal(t, 1.0, p)

	label, err := m.Classify([]string{"red"}, []float64{6.0})
	require.NoError(t, err)
	require.Equal(t, "cat", label)

	label, err = m.Classify([]string{"blue"}, []float64{1.5})
	require.NoError(t, err)
	require.Equal(t, "dog", label)
}

func TestBayesModel_PriorsSumToOne(t *testing.T) {
	rows := []TrainingRow{
		{Label: "a"}, {Label: "b"}, {Label: "b"}, {Label: "c"}, {Label: "c"}, {Label: "c"}, {Label: "d"},
	}
	m := newTrainedModel(t, rows)

	sum := 0.0
	for _, label := range m.Labels() {
		prior, err := m.PriorProbability(label)
		require.NoError(t, err)
		sum += prior
	}
	require.InDelta(t, 1.0, sum, 1e-9)
	require.Equal(t, []string{"a", "b", "c", "d"}, m.Labels())
}

func TestBayesModel_CountConservation(t *testing.T) {
	rows := append(petRows(), TrainingRow{Label: "bird", Categorical: []string{"red", "small"}})
	m := newTrainedModel(t, rows)

	total := 0
	for _, label := range m.Labels() {
		count, ok := m.agg.ClassCount(label)
		require.True(t, ok)
		total += count
	}
	require.Equal(t, len(rows), total)
	require.Equal(t, len(rows), m.Rows())
}

func TestBayesModel_ConditionalProbabilityBounds(t *testing.T) {
	rows := []TrainingRow{
		{Label: "yes", Categorical: []string{"sunny", "hot"}},
		{Label: "yes", Categorical: []string{"rainy", "mild"}},
		{Label: "yes", Categorical: []string{"sunny", "mild"}},
		{Label: "no", Categorical: []string{"rainy", "hot"}},
	}
	m := newTrainedModel(t, rows)

	for key := range m.agg.categoricalCounts {
		p, err := m.ConditionalProbability(key.label, key.column, key.value)
		require.NoError(t, err)
		require.Greater(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
	}

	p, err := m.ConditionalProbability("yes", 1, "sunny")
	require.NoError(t, err)
	require.InDelta(t, 2.0/3.0, p, 1e-12)

	// Column 2 of the categorical attributes is unrelated to column 1
	_, err = m.ConditionalProbability("yes", 2, "sunny")
	require.True(t, IsMissingEvidence(err))
}

func TestBayesModel_Errors(t *testing.T) {
	m := newTrainedModel(t, petRows())

	_, err := m.PriorProbability("fish")
	require.True(t, IsUnknownLabel(err))
	require.Contains(t, err.Error(), "fish")

	_, err = m.ConditionalProbability("fish", 1, "red")
	require.True(t, IsUnknownLabel(err))

	_, err = m.ConditionalProbability("dog", 1, "red")
	require.True(t, IsMissingEvidence(err))
	var missing *MissingEvidenceError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, MissingEvidenceError{Label: "dog", Column: 1, Value: "red"}, *missing)

	_, err = m.Mean("fish", 1)
	require.True(t, IsUnknownLabel(err))

	_, err = m.SampleStandardDeviation("fish", 1)
	require.True(t, IsUnknownLabel(err))
}

func TestBayesModel_DegenerateClass(t *testing.T) {
	rows := append(petRows(), TrainingRow{Label: "fish", Categorical: []string{"gold"}, Continuous: []float64{0.5}})
	m := newTrainedModel(t, rows)

	_, err := m.SampleStandardDeviation("fish", 1)
	require.True(t, IsDegenerateClass(err))
	var degenerate *DegenerateClassError
	require.ErrorAs(t, err, &degenerate)
	require.Equal(t, 1, degenerate.Count)

	_, err = m.Classify([]string{"red"}, []float64{6.0})
	require.True(t, IsDegenerateClass(err))

	_, err = m.Evaluate(petRows())
	require.True(t, IsDegenerateClass(err))

	// Without continuous attributes the single row class is fine
	label, err := m.Classify([]string{"gold"}, nil)
	require.NoError(t, err)
	require.Equal(t, "fish", label)
}

func TestBayesModel_ZeroSpread(t *testing.T) {
	m := newTrainedModel(t, []TrainingRow{
		{Label: "a", Continuous: []float64{3.0}},
		{Label: "a", Continuous: []float64{3.0}},
	})

	_, err := m.SampleStandardDeviation("a", 1)
	require.True(t, IsDegenerateClass(err))
	require.Contains(t, err.Error(), "zero spread")
	require.Contains(t, err.Error(), "no row can be classified")

	_, err = m.Classify(nil, []float64{3.0})
	require.True(t, IsDegenerateClass(err))
}

func TestBayesModel_SparseColumns(t *testing.T) {
	m := newTrainedModel(t, []TrainingRow{
		{Label: "a", Categorical: []string{"x"}, Continuous: []float64{1.0}},
		{Label: "a", Categorical: []string{"x", "y"}, Continuous: []float64{3.0, 10.0}},
	})

	p, err := m.ConditionalProbability("a", 2, "y")
	require.NoError(t, err)
	require.Equal(t, 0.5, p)

	// Means are taken over every row of the class, absent values count as zero
	mean, err := m.Mean("a", 2)
	require.NoError(t, err)
	require.Equal(t, 5.0, mean)

	mean, err = m.Mean("a", 3)
	require.NoError(t, err)
	require.Equal(t, 0.0, mean)
}

func TestBayesModel_IngestAfterTraining(t *testing.T) {
	m := newTrainedModel(t, petRows())
	require.False(t, m.Trained())

	_, err := m.PriorProbability("cat")
	require.NoError(t, err)
	require.True(t, m.Trained())

	err = m.Ingest(TrainingRow{Label: "cat"})
	require.ErrorIs(t, err, ErrModelTrained)
	require.Equal(t, 4, m.Rows())
}

func TestBayesModel_IngestEmptyLabel(t *testing.T) {
	m := newTrainedModel(t, petRows())

	err := m.Ingest(TrainingRow{Label: Unclassified, Categorical: []string{"red"}, Continuous: []float64{5.0}})
	require.ErrorIs(t, err, ErrEmptyLabel)
	require.Equal(t, 4, m.Rows())
	require.Equal(t, []string{"cat", "dog"}, m.Labels())
	require.False(t, m.Trained())
}

func TestBayesModel_ConcurrentIngestAndClassify(t *testing.T) {
	m := NewBayesModel()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, row := range petRows() {
				require.NoError(t, m.Ingest(row))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 100, m.Rows())

	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			label, err := m.Classify([]string{"red"}, []float64{6.0})
			require.NoError(t, err)
			results[i] = label
		}(i)
	}
	wg.Wait()
	for _, label := range results {
		require.Equal(t, "cat", label)
	}
}
