package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a segment addressing an object member
func KeySegment(key string) Segment {
	return Segment{Key: key}
}

// IndexSegment returns a segment addressing an array element
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String returns the raw key or the decimal index
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// MarshalJSON writes keys as strings and indices as integers
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.IsIndex {
		return []byte(strconv.Itoa(s.Index)), nil
	}
	return json.Marshal(s.Key)
}

// Path addresses a node from the root; the root is the empty path.
type Path []Segment

// Key returns a new path extended by an object key
func (p Path) Key(key string) Path {
	return p.extend(KeySegment(key))
}

// Index returns a new path extended by an array index
func (p Path) Index(i int) Path {
	return p.extend(IndexSegment(i))
}

// extend always copies so sibling paths never share a backing array
func (p Path) extend(s Segment) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = s
	return next
}

// IsRoot reports whether p is the empty path
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Last returns the final segment of a non-root path
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether both paths hold the same segments
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// String renders p as an RFC 6901 JSON Pointer; the root is ""
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s.String()))
	}
	return b.String()
}

// MarshalJSON writes the array form, e.g. ["friends",0,"name"]
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Segment(p))
}
