package model

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrModelTrained is returned when rows are ingested after the derived
	// statistics have been computed.
	ErrModelTrained = errors.New("model is already trained, build a new model to retrain")

	ErrNoTrainingData = errors.New("no training data")

	ErrInvalidBucket = errors.New("invalid bucket")

	// ErrEmptyLabel is returned for rows without a class label, which would be
	// indistinguishable from Unclassified.
	ErrEmptyLabel = errors.New("empty class label")
)

// UnknownLabelError reports a class label that never appeared in training.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown class label %q", e.Label)
}

// MissingEvidenceError reports a categorical value never observed for a class at a column.
type MissingEvidenceError struct {
	Label  string
	Column int
	Value  string
}

func (e *MissingEvidenceError) Error() string {
	return fmt.Sprintf("no evidence for value %q at categorical column %d in class %q", e.Value, e.Column, e.Label)
}

// DegenerateClassError reports a class whose sample standard deviation for a
// continuous column is undefined or zero.
type DegenerateClassError struct {
	Label  string
	Column int
	Count  int
}

func (e *DegenerateClassError) Error() string {
	if e.Count < 2 {
		return fmt.Sprintf("class %q has %d training row(s), sample standard deviation of continuous column %d is undefined",
			e.Label, e.Count, e.Column)
	}
	return fmt.Sprintf("class %q has zero spread at continuous column %d (%d training rows), its density is undefined and no row can be classified",
		e.Label, e.Column, e.Count)
}

func IsUnknownLabel(err error) bool {
	var target *UnknownLabelError
	return errors.As(err, &target)
}

func IsMissingEvidence(err error) bool {
	var target *MissingEvidenceError
	return errors.As(err, &target)
}

func IsDegenerateClass(err error) bool {
	var target *DegenerateClassError
	return errors.As(err, &target)
}
