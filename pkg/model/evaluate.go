package model

import (
	"sort"
)

// ConfusionTally counts classifications as tally[trueLabel][predictedLabel].
// Rows no class could score are counted under the Unclassified prediction.
type ConfusionTally map[string]map[string]int

func (c ConfusionTally) Add(trueLabel, predicted string, n int) {
	row, ok := c[trueLabel]
	if !ok {
		row = map[string]int{}
		c[trueLabel] = row
	}
	row[predicted] += n
}

// Merge adds all counts of other into c.
func (c ConfusionTally) Merge(other ConfusionTally) {
	for trueLabel, row := range other {
		for predicted, n := range row {
			c.Add(trueLabel, predicted, n)
		}
	}
}

func (c ConfusionTally) Count(trueLabel, predicted string) int {
	return c[trueLabel][predicted]
}

func (c ConfusionTally) Total() int {
	total := 0
	for _, row := range c {
		for _, n := range row {
			total += n
		}
	}
	return total
}

func (c ConfusionTally) Correct() int {
	correct := 0
	for label, row := range c {
		correct += row[label]
	}
	return correct
}

// Labels returns every true or predicted label in the tally, sorted.
func (c ConfusionTally) Labels() []string {
	seen := map[string]struct{}{}
	for trueLabel, row := range c {
		seen[trueLabel] = struct{}{}
		for predicted := range row {
			seen[predicted] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for label := range seen {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

// Evaluate classifies every row and tallies true against predicted labels.
func (m *BayesModel) Evaluate(rows []TrainingRow) (ConfusionTally, error) {
	return m.EvaluateWith(rows, nil)
}

// EvaluateWith is Evaluate, additionally passing every prediction to visit
// when it is not nil.
func (m *BayesModel) EvaluateWith(rows []TrainingRow, visit func(row TrainingRow, predicted string)) (ConfusionTally, error) {
	tally := ConfusionTally{}
	for _, row := range rows {
		predicted, err := m.Classify(row.Categorical, row.Continuous)
		if err != nil {
			return nil, err
		}
		tally.Add(row.Label, predicted, 1)
		if visit != nil {
			visit(row, predicted)
		}
	}
	return tally, nil
}
