package models

// Stats holds statistical metadata about a comparison
type Stats struct {
	ExpectedNodes int `json:"expectedNodes"` // count of nodes in the expected tree
	ActualNodes   int `json:"actualNodes"`   // count of nodes in the actual tree

	TypeMismatches    int `json:"typeMismatches,omitempty"`
	ValueMismatches   int `json:"valueMismatches,omitempty"`
	MissingKeys       int `json:"missingKeys,omitempty"`
	ExtraKeys         int `json:"extraKeys,omitempty"`
	LengthMismatches  int `json:"lengthMismatches,omitempty"`
	ElementMismatches int `json:"elementMismatches,omitempty"` // array elements holding nested differences
}

// Add records one difference of the given kind
func (s *Stats) Add(kind DifferenceKind) {
	switch kind {
	case TypeMismatch:
		s.TypeMismatches++
	case ValueMismatch:
		s.ValueMismatches++
	case MissingKey:
		s.MissingKeys++
	case ExtraKey:
		s.ExtraKeys++
	case LengthMismatch:
		s.LengthMismatches++
	case ElementMismatch:
		s.ElementMismatches++
	}
}

// Of returns the count recorded for kind
func (s Stats) Of(kind DifferenceKind) int {
	switch kind {
	case TypeMismatch:
		return s.TypeMismatches
	case ValueMismatch:
		return s.ValueMismatches
	case MissingKey:
		return s.MissingKeys
	case ExtraKey:
		return s.ExtraKeys
	case LengthMismatch:
		return s.LengthMismatches
	case ElementMismatch:
		return s.ElementMismatches
	}
	return 0
}

// Total returns the number of difference records, which excludes
// ElementMismatches since those are never emitted on their own
func (s Stats) Total() int {
	return s.TypeMismatches + s.ValueMismatches + s.MissingKeys + s.ExtraKeys + s.LengthMismatches
}

// NodeChange returns the shift in node count from expected to actual
func (s Stats) NodeChange() int {
	return s.ActualNodes - s.ExpectedNodes
}
