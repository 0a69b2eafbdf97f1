package model

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNumBuckets = 10

	// NoTestBucket trains on every bucket.
	NoTestBucket = -1
)

// DataParser turns a data file identifier into labeled rows.
type DataParser interface {
	ParseFile(identifier string) ([]TrainingRow, error)
}

type TrainingParameters struct {
	BucketPrefix string
	NumBuckets   int
	TestBucket   int

	// Workers bounds the number of buckets parsed concurrently.
	Workers int
}

// BucketIdentifier names bucket index of the data set with the given prefix.
func BucketIdentifier(prefix string, index int) string {
	return fmt.Sprintf("%s-%02d", prefix, index)
}

func (p TrainingParameters) validate() error {
	if p.NumBuckets < 1 {
		return errors.Wrapf(ErrInvalidBucket, "number of buckets must be positive, got %d", p.NumBuckets)
	}
	if p.TestBucket != NoTestBucket && (p.TestBucket < 0 || p.TestBucket >= p.NumBuckets) {
		return errors.Wrapf(ErrInvalidBucket, "test bucket %d out of range [0, %d)", p.TestBucket, p.NumBuckets)
	}
	return nil
}

// Train builds a model from every bucket except the test bucket. Buckets may be
// parsed concurrently but rows are ingested in ascending bucket order, each
// bucket in parser order.
func Train(ctx context.Context, parser DataParser, params TrainingParameters) (*BayesModel, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	buckets := make([][]TrainingRow, params.NumBuckets)
	g, ctx := errgroup.WithContext(ctx)
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i := 0; i < params.NumBuckets; i++ {
		if i == params.TestBucket {
			continue
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			identifier := BucketIdentifier(params.BucketPrefix, i)
			rows, err := parser.ParseFile(identifier)
			if err != nil {
				return errors.Wrapf(err, "error parsing bucket %s", identifier)
			}
			buckets[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := NewBayesModel()
	for i, rows := range buckets {
		if i == params.TestBucket {
			continue
		}
		for _, row := range rows {
			if err := m.Ingest(row); err != nil {
				return nil, err
			}
		}
		log.Debug().Int("Bucket", i).Str("File", BucketIdentifier(params.BucketPrefix, i)).Int("Rows", len(rows)).Msg("Ingested bucket")
	}

	if m.Rows() == 0 {
		return nil, errors.Wrapf(ErrNoTrainingData, "bucket prefix %s", params.BucketPrefix)
	}
	log.Info().Int("Rows", m.Rows()).Int("TestBucket", params.TestBucket).Msg("Training data loaded")
	return m, nil
}
