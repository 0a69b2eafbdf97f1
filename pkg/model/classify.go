package model

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Unclassified is returned by Classify when every known class scores zero.
const Unclassified = ""

// GaussianDensity evaluates the normal probability density with the given mean
// and standard deviation at x.
func GaussianDensity(mean, stdDev, x float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: stdDev}.Prob(x)
}

// Scores returns the unnormalized posterior of every known class for the given
// attributes. A categorical value never observed for a class zeroes that class.
func (m *BayesModel) Scores(categorical []string, continuous []float64) (map[string]float64, error) {
	d := m.stats()
	scores := make(map[string]float64, len(d.labels))
	for _, label := range d.labels {
		score, err := m.score(label, categorical, continuous)
		if err != nil {
			return nil, err
		}
		scores[label] = score
	}
	return scores, nil
}

func (m *BayesModel) score(label string, categorical []string, continuous []float64) (float64, error) {
	score, err := m.PriorProbability(label)
	if err != nil {
		return 0, err
	}

	for i, value := range categorical {
		p, err := m.ConditionalProbability(label, i+1, value)
		if IsMissingEvidence(err) {
			score = 0
			continue
		}
		if err != nil {
			return 0, err
		}
		score *= p
	}

	for i, value := range continuous {
		mean, err := m.Mean(label, i+1)
		if err != nil {
			return 0, err
		}
		stdDev, err := m.SampleStandardDeviation(label, i+1)
		if err != nil {
			return 0, err
		}
		score *= GaussianDensity(mean, stdDev, value)
	}
	return score, nil
}

// Classify returns the class with the highest posterior score. Ties go to the
// lexicographically smallest label. When no class has a positive score the
// result is Unclassified.
func (m *BayesModel) Classify(categorical []string, continuous []float64) (string, error) {
	scores, err := m.Scores(categorical, continuous)
	if err != nil {
		return Unclassified, err
	}
	return m.MostProbable(scores), nil
}

// MostProbable picks the label of scores as returned by Scores, with the same
// tie-break as Classify.
func (m *BayesModel) MostProbable(scores map[string]float64) string {
	best, bestScore := Unclassified, 0.0
	for _, label := range m.stats().labels {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}
	return best
}
