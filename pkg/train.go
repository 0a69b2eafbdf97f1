package pkg

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nbayes/pkg/io"
	"nbayes/pkg/model"
)

type Parameters struct {
	model.TrainingParameters

	// Format lists the kind of every bucket file column, e.g. "attr num class"
	Format    string
	Separator string
}

func newParser(p Parameters) (*io.BucketParser, error) {
	format, err := io.ParseFormat(p.Format)
	if err != nil {
		return nil, fmt.Errorf("error parsing column format: %w", err)
	}
	separator, err := io.ParseSeparator(p.Separator)
	if err != nil {
		return nil, err
	}
	return io.NewBucketParser(io.DataParameters{Format: format, Separator: separator}), nil
}

// Train builds a model from every bucket except p.TestBucket.
func Train(ctx context.Context, p Parameters) (*model.BayesModel, *io.BucketParser, error) {
	parser, err := newParser(p)
	if err != nil {
		return nil, nil, err
	}
	m, err := model.Train(ctx, parser, p.TrainingParameters)
	printDataErrors(parser.DataErrors())
	if err != nil {
		return nil, nil, fmt.Errorf("error training model: %w", err)
	}
	return m, parser, nil
}

// Classify trains a model and classifies a single instance.
func Classify(ctx context.Context, p Parameters, categorical []string, continuous []float64) (string, error) {
	m, _, err := Train(ctx, p)
	if err != nil {
		return model.Unclassified, err
	}

	scores, err := m.Scores(categorical, continuous)
	if err != nil {
		return model.Unclassified, err
	}
	for _, label := range m.Labels() {
		log.Debug().Str("Class", label).Float64("Score", scores[label]).Msg("")
	}

	return m.MostProbable(scores), nil
}
