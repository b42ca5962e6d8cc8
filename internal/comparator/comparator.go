// Package comparator computes a structural diff between two JSON-like value
// trees.
//
// The walk is positional and depth first: at every node the mismatches of
// the node itself are reported before those of its children, object keys are
// visited in lexicographic order and array elements index for index. Two
// inputs always produce the same Report, difference for difference.
//
// A Comparator holds no state between calls and is safe for concurrent use.
package comparator

import (
	"fmt"
	"sort"

	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/models"
)

// DefaultMaxDepth is the nesting limit applied when no option overrides it
const DefaultMaxDepth = 512

// Config holds the parameters of a comparison
type Config struct {
	// MaxDepth bounds how deep the walk descends; deeper input fails with
	// ErrDepthExceeded instead of exhausting the stack
	MaxDepth int
	// Provide a non-nil stats pointer & Compare will populate it
	Stats *models.Stats
}

// Option is a function that adjusts a Config
type Option func(cfg *Config)

// OptionMaxDepth sets the nesting limit; n <= 0 keeps the default
func OptionMaxDepth(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxDepth = n
		}
	}
}

// OptionSetStats will fill st when Compare is called
func OptionSetStats(st *models.Stats) Option {
	return func(cfg *Config) {
		cfg.Stats = st
	}
}

// Comparator runs comparisons with a fixed configuration
type Comparator struct {
	opts []Option
}

// New returns a Comparator applying opts to every comparison
func New(opts ...Option) *Comparator {
	return &Comparator{opts: opts}
}

// Compare diffs expected against actual. Per-call options are applied after
// the Comparator's own.
func (c *Comparator) Compare(expected, actual models.Value, opts ...Option) (*models.Report, error) {
	all := make([]Option, 0, len(c.opts)+len(opts))
	all = append(all, c.opts...)
	all = append(all, opts...)
	return Compare(expected, actual, all...)
}

// Compare produces the report of every difference between expected and
// actual. The only error is a DepthExceeded one, when either tree is nested
// deeper than the configured limit; differences are never errors.
func Compare(expected, actual models.Value, opts ...Option) (*models.Report, error) {
	cfg := &Config{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Stats != nil {
		*cfg.Stats = models.Stats{}
	}

	w := &walker{maxDepth: cfg.MaxDepth, stats: cfg.Stats}
	if err := w.walk(models.Path{}, expected, actual, 1); err != nil {
		return nil, err
	}

	if cfg.Stats != nil {
		cfg.Stats.ExpectedNodes = expected.Count()
		cfg.Stats.ActualNodes = actual.Count()
	}
	return models.NewReport(w.diffs), nil
}

// walker accumulates the differences of one comparison
type walker struct {
	maxDepth int
	stats    *models.Stats
	diffs    []models.Difference
}

func (w *walker) emit(path models.Path, kind models.DifferenceKind, expected, actual *models.Value) {
	w.diffs = append(w.diffs, models.Difference{
		Path:     path,
		Kind:     kind,
		Expected: expected,
		Actual:   actual,
	})
	if w.stats != nil {
		w.stats.Add(kind)
	}
}

func (w *walker) walk(path models.Path, expected, actual models.Value, depth int) error {
	if depth > w.maxDepth {
		return errors.NewDepthError(
			fmt.Sprintf("comparison exceeds %d nesting levels at %q", w.maxDepth, path.String()),
			errors.ErrDepthExceeded,
		)
	}

	if expected.Kind() != actual.Kind() {
		w.emit(path, models.TypeMismatch, &expected, &actual)
		return nil
	}

	switch expected.Kind() {
	case models.KindObject:
		return w.objects(path, expected, actual, depth)
	case models.KindArray:
		return w.arrays(path, expected, actual, depth)
	default:
		if !expected.Equal(actual) {
			w.emit(path, models.ValueMismatch, &expected, &actual)
		}
		return nil
	}
}

func (w *walker) objects(path models.Path, expected, actual models.Value, depth int) error {
	for _, key := range unionKeys(expected, actual) {
		ev, inExpected := expected.Get(key)
		av, inActual := actual.Get(key)
		child := path.Key(key)

		switch {
		case !inActual:
			w.emit(child, models.MissingKey, &ev, nil)
		case !inExpected:
			w.emit(child, models.ExtraKey, nil, &av)
		default:
			if err := w.walk(child, ev, av, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) arrays(path models.Path, expected, actual models.Value, depth int) error {
	el, al := expected.Len(), actual.Len()
	if el != al {
		expectedLen, actualLen := models.Int(int64(el)), models.Int(int64(al))
		w.emit(path, models.LengthMismatch, &expectedLen, &actualLen)
	}

	overlap := el
	if al < overlap {
		overlap = al
	}
	for i := 0; i < overlap; i++ {
		before := len(w.diffs)
		if err := w.walk(path.Index(i), expected.Index(i), actual.Index(i), depth+1); err != nil {
			return err
		}
		if w.stats != nil && len(w.diffs) > before {
			w.stats.Add(models.ElementMismatch)
		}
	}
	return nil
}

// unionKeys returns the keys of both objects, sorted and without duplicates
func unionKeys(a, b models.Value) []string {
	seen := make(map[string]struct{}, a.Len()+b.Len())
	keys := make([]string, 0, a.Len()+b.Len())
	for _, obj := range []models.Value{a, b} {
		for _, k := range obj.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
