package io

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"nbayes/pkg/model"
)

type BucketizeParameters struct {
	InputFile    string
	BucketPrefix string
	NumBuckets   int
	Separator    rune

	// ClassColumn stratifies the buckets by the class found at this file column, -1 disables stratification
	ClassColumn int
	RndSeed     int64
}

// DataSet holds the raw lines of a data file grouped by class.
type DataSet struct {
	Groups map[string][]string
	Rand   *rand.Rand
}

func NewDataSet(lines []string, classColumn int, separator rune, rnd *rand.Rand) *DataSet {
	ds := &DataSet{Groups: map[string][]string{}, Rand: rnd}
	for _, line := range lines {
		class := ""
		if classColumn >= 0 {
			fields := strings.Split(line, string(separator))
			if classColumn < len(fields) {
				class = strings.TrimSpace(fields[classColumn])
			}
		}
		ds.Groups[class] = append(ds.Groups[class], line)
	}
	return ds
}

func (d *DataSet) Size() int {
	size := 0
	for _, lines := range d.Groups {
		size += len(lines)
	}
	return size
}

// Split shuffles every class group and deals its lines round robin over
// numBuckets buckets, so every bucket holds roughly the same class mix.
func (d *DataSet) Split(numBuckets int) [][]string {
	classes := make([]string, 0, len(d.Groups))
	for class := range d.Groups {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	buckets := make([][]string, numBuckets)
	next := 0
	for _, class := range classes {
		lines := make([]string, len(d.Groups[class]))
		copy(lines, d.Groups[class])
		d.Rand.Shuffle(len(lines), func(i, j int) {
			lines[i], lines[j] = lines[j], lines[i]
		})
		for _, line := range lines {
			buckets[next] = append(buckets[next], line)
			next = (next + 1) % numBuckets
		}
	}
	return buckets
}

// Bucketize splits a data file into bucket files named after model.BucketIdentifier
// and returns the number of lines written to each bucket.
func Bucketize(p BucketizeParameters) ([]int, error) {
	if p.NumBuckets < 1 {
		return nil, fmt.Errorf("number of buckets must be positive, got %d", p.NumBuckets)
	}
	if p.Separator == 0 {
		p.Separator = '\t'
	}

	lines, err := readLines(p.InputFile)
	if err != nil {
		return nil, err
	}

	ds := NewDataSet(lines, p.ClassColumn, p.Separator, rand.New(rand.NewSource(p.RndSeed)))
	buckets := ds.Split(p.NumBuckets)

	sizes := make([]int, len(buckets))
	for i, bucket := range buckets {
		if err := writeLines(model.BucketIdentifier(p.BucketPrefix, i), bucket); err != nil {
			return nil, err
		}
		sizes[i] = len(bucket)
	}
	return sizes, nil
}

func readLines(fileName string) ([]string, error) {
	inputFile, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	var lines []string
	scanner := bufio.NewScanner(inputFile)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", fileName, err)
	}
	return lines, nil
}

func writeLines(fileName string, lines []string) error {
	outputFile, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating bucket file %s: %w", fileName, err)
	}
	defer outputFile.Close()

	writer := bufio.NewWriter(outputFile)
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("error writing bucket file %s: %w", fileName, err)
		}
	}
	return writer.Flush()
}
