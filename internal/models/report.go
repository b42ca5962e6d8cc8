package models

import (
	"encoding/json"
)

// DifferenceKind names the kind of discrepancy a Difference describes.
type DifferenceKind string

const (
	// TypeMismatch means expected and actual hold different variants
	TypeMismatch DifferenceKind = "TypeMismatch"
	// ValueMismatch means both are the same scalar variant with different values
	ValueMismatch DifferenceKind = "ValueMismatch"
	// MissingKey means the key is present in expected only
	MissingKey DifferenceKind = "MissingKey"
	// ExtraKey means the key is present in actual only
	ExtraKey DifferenceKind = "ExtraKey"
	// LengthMismatch means two arrays differ in length; the value slots hold
	// the lengths
	LengthMismatch DifferenceKind = "LengthMismatch"
	// ElementMismatch describes an array element with nested differences. It
	// is never emitted as a record of its own: the nested differences under
	// the index path stand for it.
	ElementMismatch DifferenceKind = "ElementMismatch"
)

// DifferenceKinds lists the kinds in reporting order
var DifferenceKinds = []DifferenceKind{
	TypeMismatch,
	ValueMismatch,
	MissingKey,
	ExtraKey,
	LengthMismatch,
	ElementMismatch,
}

// Difference is one discrepancy at a specific Path
type Difference struct {
	Path     Path           `json:"path"`
	Kind     DifferenceKind `json:"kind"`
	Expected *Value         `json:"expected"`
	Actual   *Value         `json:"actual"`
}

// Report is the ordered result of one comparison
type Report struct {
	Differences []Difference `json:"differences"`
	IsEqual     bool         `json:"isEqual"`
}

// NewReport builds a report and derives IsEqual from the differences
func NewReport(diffs []Difference) *Report {
	if diffs == nil {
		diffs = []Difference{}
	}
	return &Report{Differences: diffs, IsEqual: len(diffs) == 0}
}

// Count returns the number of differences of the given kind
func (r *Report) Count(kind DifferenceKind) int {
	n := 0
	for _, d := range r.Differences {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// At returns the differences recorded at exactly path
func (r *Report) At(path Path) []Difference {
	var found []Difference
	for _, d := range r.Differences {
		if d.Path.Equal(path) {
			found = append(found, d)
		}
	}
	return found
}

// MarshalJSON writes {"isEqual": bool, "differences": [...]}
func (r *Report) MarshalJSON() ([]byte, error) {
	diffs := r.Differences
	if diffs == nil {
		diffs = []Difference{}
	}
	return json.Marshal(struct {
		IsEqual     bool         `json:"isEqual"`
		Differences []Difference `json:"differences"`
	}{
		IsEqual:     len(diffs) == 0,
		Differences: diffs,
	})
}
