package io

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nbayes/pkg/model"
)

func TestDataSet_Split(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("a\t%d", i))
	}
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("b\t%d", i))
	}

	ds := NewDataSet(lines, 0, '\t', rand.New(rand.NewSource(1)))
	require.Equal(t, 30, ds.Size())
	require.Len(t, ds.Groups["a"], 20)
	require.Len(t, ds.Groups["b"], 10)

	buckets := ds.Split(10)
	require.Len(t, buckets, 10)
	for _, bucket := range buckets {
		require.Len(t, bucket, 3)
		classes := map[string]int{}
		for _, line := range bucket {
			classes[strings.Split(line, "\t")[0]]++
		}
		require.Equal(t, map[string]int{"a": 2, "b": 1}, classes)
	}
}

func TestBucketize(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pets.txt")
	var data strings.Builder
	for i := 0; i < 23; i++ {
		fmt.Fprintf(&data, "%s\tred\t%d\n", []string{"cat", "dog"}[i%2], i)
	}
	require.NoError(t, os.WriteFile(input, []byte(data.String()), 0644))

	prefix := filepath.Join(dir, "pets")
	params := BucketizeParameters{
		InputFile:    input,
		BucketPrefix: prefix,
		NumBuckets:   model.DefaultNumBuckets,
		ClassColumn:  0,
		RndSeed:      42,
	}
	sizes, err := Bucketize(params)
	require.NoError(t, err)
	require.Equal(t, []int{3, 3, 3, 2, 2, 2, 2, 2, 2, 2}, sizes)

	format, err := ParseFormat("class attr num")
	require.NoError(t, err)
	parser := NewBucketParser(DataParameters{Format: format})
	total := 0
	for i := 0; i < model.DefaultNumBuckets; i++ {
		rows, err := parser.ParseFile(model.BucketIdentifier(prefix, i))
		require.NoError(t, err)
		total += len(rows)
	}
	require.Equal(t, 23, total)
	require.Empty(t, parser.DataErrors())

	first, err := os.ReadFile(model.BucketIdentifier(prefix, 0))
	require.NoError(t, err)
	_, err = Bucketize(params)
	require.NoError(t, err)
	second, err := os.ReadFile(model.BucketIdentifier(prefix, 0))
	require.NoError(t, err)
	require.Equal(t, first, second)

	params.NumBuckets = 0
	_, err = Bucketize(params)
	require.Error(t, err)
}
