package pkg

import (
	"context"
	"fmt"
	gio "io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"nbayes/pkg/model"
)

type NoopWriter struct{}

func (x NoopWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// Test trains on every bucket but p.TestBucket, classifies the test bucket and
// logs the resulting metrics. When outputFileName is set every prediction is
// written to it as "label,predicted".
func Test(ctx context.Context, p Parameters, outputFileName string) (model.ConfusionTally, error) {
	var outputWriter gio.Writer
	if outputFileName != "" {
		outputFile, err := os.Create(outputFileName)
		if err != nil {
			return nil, fmt.Errorf("error opening output file %s: %w", outputFileName, err)
		}
		defer outputFile.Close()
		outputWriter = outputFile
	} else {
		outputWriter = NoopWriter{}
	}

	tally, err := testBucket(ctx, p, outputWriter)
	if err != nil {
		return nil, err
	}
	logMetrics(tally)
	return tally, nil
}

// CrossValidate holds out every bucket in turn and merges the resulting tallies.
func CrossValidate(ctx context.Context, p Parameters) (model.ConfusionTally, error) {
	result := model.ConfusionTally{}
	for i := 0; i < p.NumBuckets; i++ {
		p.TestBucket = i
		tally, err := testBucket(ctx, p, NoopWriter{})
		if err != nil {
			return nil, err
		}
		log.Info().Int("TestBucket", i).Float64("Accuracy", Accuracy(tally)).Msg("")
		result.Merge(tally)
	}
	logMetrics(result)
	return result, nil
}

func testBucket(ctx context.Context, p Parameters, outputWriter gio.Writer) (model.ConfusionTally, error) {
	if p.TestBucket == model.NoTestBucket {
		return nil, fmt.Errorf("a test bucket is required: %w", model.ErrInvalidBucket)
	}
	m, parser, err := Train(ctx, p)
	if err != nil {
		return nil, err
	}

	seen := len(parser.DataErrors())
	testFile := model.BucketIdentifier(p.BucketPrefix, p.TestBucket)
	data, err := parser.ParseFile(testFile)
	if err != nil {
		return nil, fmt.Errorf("error loading data from %s: %w", testFile, err)
	}
	printDataErrors(parser.DataErrors()[seen:])
	if len(data) == 0 {
		return nil, fmt.Errorf("no data to test in %s", testFile)
	}

	tally, err := m.EvaluateWith(data, func(row model.TrainingRow, predicted string) {
		fmt.Fprintf(outputWriter, "%s,%s\n", row.Label, predicted)
	})
	if err != nil {
		return nil, fmt.Errorf("error evaluating %s: %w", testFile, err)
	}
	return tally, nil
}

// Accuracy is the share of correctly classified rows.
func Accuracy(tally model.ConfusionTally) float64 {
	total := tally.Total()
	if total == 0 {
		return 0
	}
	return float64(tally.Correct()) / float64(total)
}

// Kappa computes Cohen's kappa of the tally, the accuracy corrected for the
// agreement expected by chance.
func Kappa(tally model.ConfusionTally) float64 {
	total := float64(tally.Total())
	if total == 0 {
		return 0
	}
	labels := tally.Labels()
	trueTotals := make([]float64, len(labels))
	predictedTotals := make([]float64, len(labels))
	for i, trueLabel := range labels {
		for j, predicted := range labels {
			n := float64(tally.Count(trueLabel, predicted))
			trueTotals[i] += n
			predictedTotals[j] += n
		}
	}
	chance := floats.Dot(trueTotals, predictedTotals) / (total * total)
	if chance == 1 {
		return 0
	}
	return (Accuracy(tally) - chance) / (1 - chance)
}

func classMetrics(tally model.ConfusionTally) map[string]*stats.ClassMetrics {
	metrics := make(map[string]*stats.ClassMetrics)
	metricsFor := func(label string) *stats.ClassMetrics {
		m, ok := metrics[label]
		if !ok {
			m = stats.NewMetricCounter()
			metrics[label] = m
		}
		return m
	}

	for trueLabel, row := range tally {
		for predicted, n := range row {
			for i := 0; i < n; i++ {
				if trueLabel == predicted {
					metricsFor(trueLabel).IncTruePos()
				} else {
					metricsFor(trueLabel).IncFalseNeg()
					metricsFor(predicted).IncFalsePos()
				}
			}
		}
	}
	return metrics
}

// computeOverallF1 returns the macro and micro averaged F1 scores over the known
// classes. Unclassified rows only count as false negatives of their true class.
func computeOverallF1(metrics map[string]*stats.ClassMetrics) (float64, float64) {
	macroF1 := 0.0
	micro := stats.NewMetricCounter()
	classes := 0
	for class, result := range metrics {
		if class == model.Unclassified {
			continue
		}
		macroF1 += result.F1Score()
		micro.TruePos += result.TruePos
		micro.FalsePos += result.FalsePos
		micro.FalseNeg += result.FalseNeg
		classes++
	}
	if classes == 0 {
		return 0, 0
	}
	return macroF1 / float64(classes), micro.F1Score()
}

func displayLabel(label string) string {
	if label == model.Unclassified {
		return "(none)"
	}
	return label
}

func logMetrics(tally model.ConfusionTally) {
	metrics := classMetrics(tally)
	// Sort class names for deterministic output
	for _, class := range tally.Labels() {
		result, ok := metrics[class]
		if !ok {
			continue
		}
		log.Info().Str("Class", displayLabel(class)).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("FN", result.FalseNeg).
			Float64("Precision", result.Precision()).
			Float64("Recall", result.Recall()).
			Float64("F1", result.F1Score()).
			Msg("")
	}
	macroF1, microF1 := computeOverallF1(metrics)
	log.Info().Float64("MacroF1", macroF1).Float64("MicroF1", microF1).Msg("")
	log.Info().Int("Total", tally.Total()).
		Int("Correct", tally.Correct()).
		Float64("Accuracy", Accuracy(tally)).
		Float64("Kappa", Kappa(tally)).
		Msg("")
}

// Report renders the tally as a confusion matrix with true labels as rows and
// predicted labels as columns.
func Report(w gio.Writer, tally model.ConfusionTally) {
	labels := tally.Labels()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	header := table.Row{"actual \\ predicted"}
	for _, label := range labels {
		header = append(header, displayLabel(label))
	}
	t.AppendHeader(header)
	for _, trueLabel := range labels {
		if _, ok := tally[trueLabel]; !ok {
			continue
		}
		row := table.Row{displayLabel(trueLabel)}
		for _, predicted := range labels {
			row = append(row, tally.Count(trueLabel, predicted))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"accuracy", fmt.Sprintf("%.2f%%", 100*Accuracy(tally)), "kappa", fmt.Sprintf("%.3f", Kappa(tally))})
	t.Render()
}
