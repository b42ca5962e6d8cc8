package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/models"
)

// Output formats understood by Format
const (
	TextFormat = "text"
	JSONFormat = "json"
)

// Header opens every text report
const Header = "==== COMPARISON TREE ===="

// Verdict lines closing a text report
const (
	VerdictEqual     = "✅ Objects match"
	VerdictDifferent = "❌ Differences found"
)

// maxValueWidth caps how many characters of a value a detail line shows
const maxValueWidth = 80

// Options controls how reports are rendered
type Options struct {
	Color     bool // add ANSI colours to text output
	ShowStats bool // append the stats line to text output
}

// palette holds one colour per role; every entry is switched on or off as a
// whole so the global color.NoColor setting never leaks in
type palette struct {
	expected *color.Color
	actual   *color.Color
	note     *color.Color
	branch   *color.Color
	changed  *color.Color
	element  *color.Color
	equal    *color.Color
	differ   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		expected: color.New(color.FgCyan),
		actual:   color.New(color.FgRed),
		note:     color.New(color.FgYellow),
		branch:   color.New(color.FgBlue),
		changed:  color.New(color.FgRed),
		element:  color.New(color.FgHiBlack),
		equal:    color.New(color.FgGreen),
		differ:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.expected, p.actual, p.note, p.branch, p.changed, p.element, p.equal, p.differ} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Formatter renders comparison reports
type Formatter struct {
	opts    Options
	palette palette
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts Options) *Formatter {
	return &Formatter{opts: opts, palette: newPalette(opts.Color)}
}

// Format writes report to w in the named format
func (f *Formatter) Format(w io.Writer, format string, report *models.Report, stats *models.Stats) error {
	switch strings.ToLower(format) {
	case TextFormat, "":
		return f.FormatText(w, report, stats)
	case JSONFormat:
		return f.FormatJSON(w, report)
	default:
		return errors.NewOutputError(fmt.Sprintf("unknown output format %q", format), errors.ErrUnknownFormat)
	}
}

// FormatJSON writes the report as indented JSON
func (f *Formatter) FormatJSON(w io.Writer, report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.NewOutputError("failed to encode report", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.NewOutputError("failed to write report", err)
	}
	return nil
}

// FormatText writes the report as a tree of the differing paths followed by
// a verdict line. stats may be nil.
func (f *Formatter) FormatText(w io.Writer, report *models.Report, stats *models.Stats) error {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, Header)

	root := buildTree(report.Differences)
	f.writeDetails(buf, "    ", root.diffs)
	f.writeChildren(buf, root, "")

	if report.IsEqual {
		fmt.Fprintf(buf, "\n%s\n", f.palette.equal.Sprint(VerdictEqual))
	} else {
		fmt.Fprintf(buf, "\n%s\n", f.palette.differ.Sprint(VerdictDifferent))
	}

	if f.opts.ShowStats && stats != nil {
		fmt.Fprintln(buf, f.formatStats(stats))
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.NewOutputError("failed to write report", err)
	}
	return nil
}

// FormatTextString is a convenience wrapper that renders text to a string
func (f *Formatter) FormatTextString(report *models.Report, stats *models.Stats) (string, error) {
	buf := &bytes.Buffer{}
	if err := f.FormatText(buf, report, stats); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// node groups the differences that share a path prefix
type node struct {
	seg      models.Segment
	diffs    []models.Difference
	children []*node
	index    map[models.Segment]*node
}

func (n *node) child(seg models.Segment) *node {
	if c, ok := n.index[seg]; ok {
		return c
	}
	c := &node{seg: seg, index: map[models.Segment]*node{}}
	n.index[seg] = c
	n.children = append(n.children, c)
	return c
}

// buildTree folds the differences into a trie; since differences arrive in
// pre-order, children keep the walk order
func buildTree(diffs []models.Difference) *node {
	root := &node{index: map[models.Segment]*node{}}
	for _, d := range diffs {
		n := root
		for _, seg := range d.Path {
			n = n.child(seg)
		}
		n.diffs = append(n.diffs, d)
	}
	return root
}

func (f *Formatter) writeChildren(buf *bytes.Buffer, n *node, prefix string) {
	for i, c := range n.children {
		connector, extender := "├── ", "│   "
		if i == len(n.children)-1 {
			connector, extender = "└── ", "    "
		}

		fmt.Fprintf(buf, "%s%s%s\n", prefix, connector, f.label(c))
		f.writeDetails(buf, prefix+extender+"    ", c.diffs)
		f.writeChildren(buf, c, prefix+extender)
	}
}

func (f *Formatter) label(n *node) string {
	if !n.seg.IsIndex {
		key := n.seg.Key
		if key == "" {
			key = `""`
		}
		if len(n.diffs) > 0 {
			return f.palette.changed.Sprint(key)
		}
		return f.palette.branch.Sprint(key)
	}

	idx := fmt.Sprintf("[%d]", n.seg.Index)
	if len(n.diffs) > 0 {
		return f.palette.changed.Sprint(idx)
	}
	return fmt.Sprintf("%s %s", f.palette.element.Sprint(idx+":"), kindLabel(models.ElementMismatch))
}

func (f *Formatter) writeDetails(buf *bytes.Buffer, indent string, diffs []models.Difference) {
	p := f.palette
	for _, d := range diffs {
		switch d.Kind {
		case models.TypeMismatch:
			fmt.Fprintf(buf, "%s%s\n", indent, p.note.Sprintf("Type mismatch: expected %s, got %s", kindOf(d.Expected), kindOf(d.Actual)))
			fmt.Fprintf(buf, "%s%s %s\n", indent, p.expected.Sprint("Expected:"), short(d.Expected))
			fmt.Fprintf(buf, "%s%s   %s\n", indent, p.actual.Sprint("Actual:"), short(d.Actual))
		case models.ValueMismatch:
			fmt.Fprintf(buf, "%s%s %s\n", indent, p.expected.Sprint("Expected:"), short(d.Expected))
			fmt.Fprintf(buf, "%s%s   %s\n", indent, p.actual.Sprint("Actual:"), short(d.Actual))
		case models.MissingKey:
			fmt.Fprintf(buf, "%s%s %s\n", indent, p.expected.Sprint("Missing key, expected:"), short(d.Expected))
		case models.ExtraKey:
			fmt.Fprintf(buf, "%s%s %s\n", indent, p.actual.Sprint("Unexpected key, actual:"), short(d.Actual))
		case models.LengthMismatch:
			fmt.Fprintf(buf, "%s%s %s\n", indent, p.expected.Sprint("Expected size:"), short(d.Expected))
			fmt.Fprintf(buf, "%s%s   %s\n", indent, p.actual.Sprint("Actual size:"), short(d.Actual))
		default:
			fmt.Fprintf(buf, "%s%s\n", indent, p.note.Sprint(kindLabel(d.Kind)))
		}
	}
}

func kindOf(v *models.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

// short renders v as compact JSON, cut to maxValueWidth characters
func short(v *models.Value) string {
	if v == nil {
		return "<absent>"
	}
	s := v.String()
	if utf8.RuneCountInString(s) <= maxValueWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxValueWidth-1]) + "…"
}

// kindLabel turns a kind into lower case words, e.g. "length mismatch"
func kindLabel(kind models.DifferenceKind) string {
	return strcase.ToDelimited(string(kind), ' ')
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	if strings.HasSuffix(word, "sh") || strings.HasSuffix(word, "ch") {
		return word + "es"
	}
	return word + "s"
}

// FormatStats returns the stats line without colours
func FormatStats(stats *models.Stats) string {
	return NewFormatter(Options{}).formatStats(stats)
}

func (f *Formatter) formatStats(stats *models.Stats) string {
	if stats == nil {
		return "<nil>"
	}
	p := f.palette

	buf := &strings.Builder{}
	change := stats.NodeChange()
	sign, changeColor := "", p.element
	switch {
	case change > 0:
		sign, changeColor = "+", p.equal
	case change < 0:
		changeColor = p.differ
	}
	fmt.Fprintf(buf, "%s %s.", changeColor.Sprintf("%s%d", sign, change), plural("node", abs(change)))

	total := stats.Total()
	fmt.Fprintf(buf, " %d %s", total, plural("difference", total))

	parts := make([]string, 0, len(models.DifferenceKinds))
	for _, kind := range models.DifferenceKinds {
		n := stats.Of(kind)
		if n == 0 || kind == models.ElementMismatch {
			continue
		}
		parts = append(parts, p.note.Sprintf("%d %s", n, plural(kindLabel(kind), n)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(buf, ": %s", strings.Join(parts, ", "))
	}
	if n := stats.ElementMismatches; n > 0 {
		fmt.Fprintf(buf, " (%d %s)", n, plural(kindLabel(models.ElementMismatch), n))
	}
	buf.WriteString(".")

	return buf.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
