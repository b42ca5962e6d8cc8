package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsoncompare/internal/errors"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

// MaxExponent bounds the decimal exponent of a number literal. It keeps
// Rat from building powers of ten the input size cannot justify.
const MaxExponent = 10000

var kindNames = map[Kind]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

// String returns the JSON name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsScalar reports whether values of this kind have no children
func (k Kind) IsScalar() bool {
	return k != KindArray && k != KindObject
}

// numberRegex is the JSON number grammar (RFC 8259 section 6)
var numberRegex = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Member is one key/value pair of an object, in insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is one immutable node of a JSON-like tree. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents, or the literal of a number
	number  decimal
	items   []Value
	members []Member
	index   map[string]int
}

// Null returns the null value
func Null() Value {
	return Value{}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// String returns a string value
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Int returns an integer number value
func Int(i int64) Value {
	literal := strconv.FormatInt(i, 10)
	return Value{kind: KindNumber, text: literal, number: parseDecimal(literal)}
}

// Float returns a number value for f. NaN and infinities are not JSON numbers
// and are rejected.
func Float(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, errors.NewParsingError(
			fmt.Sprintf("%v is not a representable number", f),
			errors.ErrInvalidValue,
		)
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// Number returns a number value for a JSON number literal. The literal is
// kept verbatim for rendering while equality uses its exact decimal value.
func Number(literal string) (Value, error) {
	if !numberRegex.MatchString(literal) {
		return Value{}, errors.NewParsingError(
			fmt.Sprintf("%q is not a valid JSON number", literal),
			errors.ErrInvalidValue,
		)
	}
	if exp := exponentOf(literal); exp > MaxExponent || exp < -MaxExponent {
		return Value{}, errors.NewParsingError(
			fmt.Sprintf("number %q exceeds the supported exponent range", literal),
			errors.ErrInvalidValue,
		)
	}
	return Value{kind: KindNumber, text: literal, number: parseDecimal(literal)}, nil
}

// decimal is the canonical form digits × 10^exp of a number. digits has no
// leading or trailing zeros and is empty for zero, so equal numbers have
// equal decimals and the form never outgrows the literal.
type decimal struct {
	neg    bool
	digits string
	exp    int
}

// parseDecimal canonicalises a literal already matched by numberRegex and
// within the exponent range
func parseDecimal(literal string) decimal {
	var d decimal
	mantissa := literal
	if strings.HasPrefix(mantissa, "-") {
		d.neg = true
		mantissa = mantissa[1:]
	}
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		d.exp = exponentOf(literal)
		mantissa = mantissa[:i]
	}
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		d.exp -= len(mantissa) - i - 1
		mantissa = mantissa[:i] + mantissa[i+1:]
	}

	mantissa = strings.TrimLeft(mantissa, "0")
	digits := strings.TrimRight(mantissa, "0")
	if digits == "" {
		return decimal{}
	}
	d.exp += len(mantissa) - len(digits)
	d.digits = digits
	return d
}

// rat builds the exact rational; callers own the result
func (d decimal) rat() *big.Rat {
	r := new(big.Rat)
	if d.digits == "" {
		return r
	}
	n, _ := new(big.Int).SetString(d.digits, 10)
	exp := int64(d.exp)
	if exp < 0 {
		exp = -exp
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
	if d.exp >= 0 {
		r.SetInt(n.Mul(n, pow))
	} else {
		r.SetFrac(n, pow)
	}
	if d.neg {
		r.Neg(r)
	}
	return r
}

// exponentOf returns the exponent part of a validated literal, saturating
// when it does not fit an int
func exponentOf(literal string) int {
	i := strings.IndexAny(literal, "eE")
	if i < 0 {
		return 0
	}
	exp, err := strconv.Atoi(literal[i+1:])
	if err != nil {
		if strings.HasPrefix(literal[i+1:], "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return exp
}

// Array returns an array value holding a copy of items
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// Object returns an object value with members in the given order. Keys must
// be unique.
func Object(members ...Member) (Value, error) {
	v := Value{
		kind:    KindObject,
		members: make([]Member, len(members)),
		index:   make(map[string]int, len(members)),
	}
	for i, m := range members {
		if _, dup := v.index[m.Key]; dup {
			return Value{}, errors.NewParsingError(
				fmt.Sprintf("duplicate object key %q", m.Key),
				fmt.Errorf("%w: %w", errors.ErrInvalidValue, errors.ErrDuplicateKey),
			)
		}
		v.index[m.Key] = i
		v.members[i] = m
	}
	return v, nil
}

// MustObject is like Object but panics on duplicate keys. Intended for
// literals in tests and examples.
func MustObject(members ...Member) Value {
	v, err := Object(members...)
	if err != nil {
		panic(err)
	}
	return v
}

// MustNumber is like Number but panics on an invalid literal.
func MustNumber(literal string) Value {
	v, err := Number(literal)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the variant of v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v, false for other kinds
func (v Value) Bool() bool { return v.boolean }

// Str returns the string held by v, or the literal of a number
func (v Value) Str() string { return v.text }

// Literal returns the number literal exactly as it was written
func (v Value) Literal() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.text
}

// Rat returns the exact value of a number, nil for other kinds. It is built
// on every call.
func (v Value) Rat() *big.Rat {
	if v.kind != KindNumber {
		return nil
	}
	return v.number.rat()
}

// IsInteger reports whether a number was written without fraction or exponent
func (v Value) IsInteger() bool {
	return v.kind == KindNumber && !strings.ContainsAny(v.text, ".eE")
}

// Len returns the element count of an array or the member count of an object
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th element of an array
func (v Value) Index(i int) Value {
	return v.items[i]
}

// Items returns a copy of the elements of an array
func (v Value) Items() []Value {
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Get returns the member value stored under key
func (v Value) Get(key string) (Value, bool) {
	i, ok := v.index[key]
	if !ok {
		return Value{}, false
	}
	return v.members[i].Value, true
}

// Has reports whether an object holds key
func (v Value) Has(key string) bool {
	_, ok := v.index[key]
	return ok
}

// Keys returns the object keys in insertion order
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// SortedKeys returns the object keys in lexicographic order
func (v Value) SortedKeys() []string {
	keys := v.Keys()
	sort.Strings(keys)
	return keys
}

// Members returns a copy of the object members in insertion order
func (v Value) Members() []Member {
	cp := make([]Member, len(v.members))
	copy(cp, v.members)
	return cp
}

// Equal reports whether v and other are structurally equal. Numbers compare
// by exact value, object key order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.boolean == other.boolean
	case KindNumber:
		return v.number == other.number
	case KindString:
		return v.text == other.text
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(other.members) {
			return false
		}
		for _, m := range v.members {
			ov, ok := other.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Depth returns the nesting depth of v; scalars and empty containers are 1
func (v Value) Depth() int {
	deepest := 0
	switch v.kind {
	case KindArray:
		for _, it := range v.items {
			if d := it.Depth(); d > deepest {
				deepest = d
			}
		}
	case KindObject:
		for _, m := range v.members {
			if d := m.Value.Depth(); d > deepest {
				deepest = d
			}
		}
	}
	return deepest + 1
}

// Count returns the number of nodes in the tree rooted at v
func (v Value) Count() int {
	n := 1
	for _, it := range v.items {
		n += it.Count()
	}
	for _, m := range v.members {
		n += m.Value.Count()
	}
	return n
}

// MarshalJSON writes v as JSON; numbers keep their literal and objects their
// insertion order
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBoolean:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		b, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %s", v.kind)
	}
	return nil
}

// String renders v as compact JSON
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}
