package ranking

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAnnotation is returned when a ranker needs a linguistic
	// annotation (POS tags, lemmas, entity flags, vectors) the table lacks.
	ErrMissingAnnotation = errors.New("missing required annotation")
	// ErrInvalidConfig is returned for out-of-range ranking configuration.
	ErrInvalidConfig = errors.New("invalid ranking config")
	// ErrColumnLength is returned when a column does not cover every row.
	ErrColumnLength = errors.New("column length does not match table")
)

// AnnotationError identifies the row and feature a ranker could not find.
type AnnotationError struct {
	Strategy Strategy
	Feature  string
	DocID    int
	Position int
}

// Error implements the error interface.
func (e *AnnotationError) Error() string {
	if e.DocID == 0 && e.Position == 0 {
		return fmt.Sprintf("%s: %s requires %s", ErrMissingAnnotation, e.Strategy, e.Feature)
	}
	return fmt.Sprintf("%s: %s requires %s (doc %d, sentence %d)",
		ErrMissingAnnotation, e.Strategy, e.Feature, e.DocID, e.Position)
}

// Unwrap lets errors.Is match ErrMissingAnnotation.
func (e *AnnotationError) Unwrap() error {
	return ErrMissingAnnotation
}

func missing(strategy Strategy, feature string, rec *SentenceRecord) error {
	err := &AnnotationError{Strategy: strategy, Feature: feature}
	if rec != nil {
		err.DocID = rec.DocID
		err.Position = rec.Position
	}
	return err
}
