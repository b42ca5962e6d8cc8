package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/models"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	root, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if root.Kind() != models.KindObject {
		t.Fatalf("Parse() root kind = %s, want object", root.Kind())
	}

	expectedKeys := []string{"name", "age", "isStudent", "city"}
	if got := strings.Join(root.Keys(), ","); got != strings.Join(expectedKeys, ",") {
		t.Errorf("Parse() keys = %s, want insertion order %v", got, expectedKeys)
	}

	age, _ := root.Get("age")
	if age.Literal() != "30" || !age.IsInteger() {
		t.Errorf("Parse() age = %v, want integer literal 30", age)
	}

	city, ok := root.Get("city")
	if !ok || !city.IsNull() {
		t.Errorf("Parse() city = %v (present %v), want null member", city, ok)
	}
}

func TestParse_SimpleArray(t *testing.T) {
	root, err := Parse(strings.NewReader(`[1, "test", true, null, 3.14]`))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if root.Kind() != models.KindArray || root.Len() != 5 {
		t.Fatalf("Parse() root = %v, want array of 5", root)
	}

	expectedKinds := []models.Kind{models.KindNumber, models.KindString, models.KindBoolean, models.KindNull, models.KindNumber}
	for i, kind := range expectedKinds {
		if root.Index(i).Kind() != kind {
			t.Errorf("Parse() element %d kind = %s, want %s", i, root.Index(i).Kind(), kind)
		}
	}
	if root.Index(4).Literal() != "3.14" {
		t.Errorf("Parse() element 4 literal = %q, want 3.14", root.Index(4).Literal())
	}
}

func TestParse_NestedObjectRoundTrip(t *testing.T) {
	jsonStr := `{"user":{"name":"Jane Doe","id":123},"active":true,"tags":["go","json"],"ratio":1.50}`
	root, err := ParseString(jsonStr)
	if err != nil {
		t.Fatalf("ParseString() error = %v, wantErr nil", err)
	}

	if got := root.String(); got != jsonStr {
		t.Errorf("ParseString() re-encoded = %s, want %s", got, jsonStr)
	}
}

func TestParse_LargeNumbersKeepPrecision(t *testing.T) {
	root, err := ParseString(`[9007199254740993, 9007199254740992, 0.1000000000000000000000001]`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if root.Index(0).Equal(root.Index(1)) {
		t.Errorf("large integers collapsed: %s == %s", root.Index(0), root.Index(1))
	}
	if root.Index(2).Literal() != "0.1000000000000000000000001" {
		t.Errorf("literal = %s, want exact text", root.Index(2).Literal())
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatalf("Parse() with empty reader, err = nil, want error")
	}
	if !stderrors.Is(err, errors.ErrEmptyInput) {
		t.Errorf("Parse() with empty reader, err = %v, want ErrEmptyInput", err)
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(input)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
			continue
		}
		if !strings.Contains(err.Error(), "input string is empty") {
			t.Errorf("ParseString(%q) err = %v, want error containing 'input string is empty'", input, err)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	testCases := []struct {
		name    string
		jsonStr string
	}{
		{"missing closing brace", `{"name": "John Doe", "age": 30`},
		{"missing closing bracket", `["item1", "item2",`},
		{"bare word", `hello`},
		{"missing colon", `{"a" 1}`},
		{"trailing comma", `[1,]`},
		{"single quotes", `{'a': 1}`},
		{"non string key", `{1: 2}`},
		{"stray closing", `]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.jsonStr)
			if err == nil {
				t.Fatalf("ParseString(%s) err = nil, want error", tc.jsonStr)
			}
			if errors.TypeOf(err) != errors.ErrorTypeParsing {
				t.Errorf("ParseString(%s) err type = %s, want parsing", tc.jsonStr, errors.TypeOf(err))
			}
			if !stderrors.Is(err, errors.ErrInvalidJSON) {
				t.Errorf("ParseString(%s) err = %v, want ErrInvalidJSON", tc.jsonStr, err)
			}
		})
	}
}

func TestParse_MultipleValues(t *testing.T) {
	_, err := ParseString(`{"a":1} {"b":2}`)
	if !stderrors.Is(err, errors.ErrMultipleJSON) {
		t.Errorf("ParseString() err = %v, want ErrMultipleJSON", err)
	}

	if _, err := ParseString("{\"a\":1}\n\n  "); err != nil {
		t.Errorf("ParseString() with trailing whitespace err = %v, want nil", err)
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	_, err := ParseString(`{"a":1,"a":2}`)
	if !stderrors.Is(err, errors.ErrDuplicateKey) {
		t.Errorf("ParseString() err = %v, want ErrDuplicateKey", err)
	}
	if !stderrors.Is(err, errors.ErrInvalidValue) {
		t.Errorf("ParseString() err = %v, want ErrInvalidValue", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 10) + strings.Repeat("]", 10)

	if _, err := ParseString(deep, WithMaxDepth(10)); err != nil {
		t.Errorf("ParseString() at the limit err = %v, want nil", err)
	}

	_, err := ParseString(deep, WithMaxDepth(9))
	if !stderrors.Is(err, errors.ErrDepthExceeded) {
		t.Fatalf("ParseString() over the limit err = %v, want ErrDepthExceeded", err)
	}
	if errors.TypeOf(err) != errors.ErrorTypeDepth {
		t.Errorf("ParseString() err type = %s, want depth", errors.TypeOf(err))
	}

	adversarial := strings.Repeat("[", DefaultMaxDepth+50)
	if _, err := ParseString(adversarial); !stderrors.Is(err, errors.ErrDepthExceeded) {
		t.Errorf("ParseString() adversarial err = %v, want ErrDepthExceeded", err)
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	root, err := ParseFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}

	price, ok := root.Get("price")
	if !ok || price.Literal() != "1200.50" {
		t.Errorf("ParseFile() price = %v, want 1200.50", price)
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json")
	if !stderrors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ParseFile() with non-existent file, err = %v, want ErrFileNotFound", err)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("")
	if err == nil || !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name())
	if !stderrors.Is(err, errors.ErrFileEmpty) {
		t.Errorf("ParseFile() with empty file content, err = %v, want ErrFileEmpty", err)
	}
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name     string
		jsonStr  string
		kind     models.Kind
		rendered string
	}{
		{"RootString", `"hello world"`, models.KindString, `"hello world"`},
		{"RootNumber", `123.45`, models.KindNumber, `123.45`},
		{"RootBooleanTrue", `true`, models.KindBoolean, `true`},
		{"RootBooleanFalse", `false`, models.KindBoolean, `false`},
		{"RootNull", `null`, models.KindNull, `null`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tc.jsonStr))
			if err != nil {
				t.Fatalf("Parse() error = %v, wantErr nil for %s", err, tc.name)
			}
			if root.Kind() != tc.kind {
				t.Errorf("Parse() kind = %s, want %s", root.Kind(), tc.kind)
			}
			if root.String() != tc.rendered {
				t.Errorf("Parse() rendered = %s, want %s", root.String(), tc.rendered)
			}
		})
	}
}

func TestParseInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expected.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	testCases := []struct {
		name  string
		arg   string
		stdin string
		want  string
	}{
		{"inline object", `{"from":"arg"}`, "", `{"from":"arg"}`},
		{"inline scalar", `42`, "", `42`},
		{"absolute path", path, "", `{"from":"file"}`},
		{"at path", "@" + path, "", `{"from":"file"}`},
		{"stdin", "-", `["from","stdin"]`, `["from","stdin"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseInput(tc.arg, strings.NewReader(tc.stdin))
			if err != nil {
				t.Fatalf("ParseInput(%q) error = %v", tc.arg, err)
			}
			if v.String() != tc.want {
				t.Errorf("ParseInput(%q) = %s, want %s", tc.arg, v.String(), tc.want)
			}
		})
	}
}

func TestParseInput_Errors(t *testing.T) {
	if _, err := ParseInput("", nil); !stderrors.Is(err, errors.ErrNoInput) {
		t.Errorf("ParseInput(\"\") err = %v, want ErrNoInput", err)
	}
	if _, err := ParseInput("./does/not/exist.json", nil); !stderrors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ParseInput(missing file) err = %v, want ErrFileNotFound", err)
	}
	if _, err := ParseInput("-", strings.NewReader("  ")); !stderrors.Is(err, errors.ErrEmptyInput) {
		t.Errorf("ParseInput(-) with blank stdin err = %v, want ErrEmptyInput", err)
	}
}

func heapInUse() uint64 {
	runtime.GC()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func TestParse_LargeExponentsStayCheap(t *testing.T) {
	const count = 20000
	input := "[" + strings.TrimSuffix(strings.Repeat("1e9999,", count), ",") + "]"

	before := heapInUse()
	root, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	retained := int64(heapInUse()) - int64(before)

	// A materialised 10^9999 costs about 4 KB per element
	if limit := int64(64 * len(input)); retained > limit {
		t.Errorf("parsed tree retains %d bytes for %d input bytes, want at most %d", retained, len(input), limit)
	}
	if root.Len() != count {
		t.Errorf("root.Len() = %d, want %d", root.Len(), count)
	}
	if !root.Index(0).Equal(root.Index(count - 1)) {
		t.Error("equal large-exponent numbers compare unequal")
	}
	runtime.KeepAlive(root)
}
