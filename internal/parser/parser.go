package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors"                             // Standard errors package
	"github.com/mcncl/jsoncompare/internal/errors" // Custom errors package
	"github.com/mcncl/jsoncompare/internal/models"
)

// DefaultMaxDepth is the nesting limit applied when no option overrides it
const DefaultMaxDepth = 512

// Options control how input is turned into values
type Options struct {
	MaxDepth int
}

// Option adjusts Options
type Option func(*Options)

// WithMaxDepth sets the nesting limit; n <= 0 keeps the default
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxDepth = n
		}
	}
}

func newOptions(opts []Option) Options {
	o := Options{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parse decodes exactly one JSON value from reader into a models.Value.
// Object key order and number literals are preserved.
func Parse(reader io.Reader, opts ...Option) (models.Value, error) {
	o := newOptions(opts)
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	d := &decodeState{dec: decoder, maxDepth: o.MaxDepth}
	root, err := d.value(1)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Value{}, err
	}

	// Anything but EOF after the root value is trailing data.
	if _, err := decoder.Token(); err != io.EOF {
		if err == nil {
			return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return models.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", wrapDecodeError(err))
	}

	return root, nil
}

// decodeState walks the decoder's token stream
type decodeState struct {
	dec      *json.Decoder
	maxDepth int
}

func (d *decodeState) value(depth int) (models.Value, error) {
	if depth > d.maxDepth {
		return models.Value{}, errors.NewDepthError(
			fmt.Sprintf("input nesting exceeds %d levels", d.maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	tok, err := d.dec.Token()
	if err != nil {
		if err == io.EOF {
			return models.Value{}, err
		}
		return models.Value{}, d.syntaxError(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object(depth)
		case '[':
			return d.array(depth)
		default:
			return models.Value{}, errors.NewParsingError(
				fmt.Sprintf("unexpected delimiter %q at offset %d", t, d.dec.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
	case nil:
		return models.Null(), nil
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(t.String())
	case string:
		return models.String(t), nil
	default:
		return models.Value{}, errors.NewParsingError(fmt.Sprintf("unsupported token %T", tok), errors.ErrInvalidValue)
	}
}

func (d *decodeState) object(depth int) (models.Value, error) {
	var members []models.Member
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return models.Value{}, d.syntaxError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return models.Value{}, errors.NewParsingError(
				fmt.Sprintf("object key is not a string at offset %d", d.dec.InputOffset()),
				errors.ErrInvalidJSON,
			)
		}
		val, err := d.value(depth + 1)
		if err != nil {
			return models.Value{}, d.truncated(err)
		}
		members = append(members, models.Member{Key: key, Value: val})
	}
	if err := d.closing(); err != nil {
		return models.Value{}, err
	}
	return models.Object(members...)
}

func (d *decodeState) array(depth int) (models.Value, error) {
	var items []models.Value
	for d.dec.More() {
		val, err := d.value(depth + 1)
		if err != nil {
			return models.Value{}, d.truncated(err)
		}
		items = append(items, val)
	}
	if err := d.closing(); err != nil {
		return models.Value{}, err
	}
	return models.Array(items...), nil
}

// closing consumes the '}' or ']' ending a container
func (d *decodeState) closing() error {
	if _, err := d.dec.Token(); err != nil {
		return d.syntaxError(err)
	}
	return nil
}

// truncated turns an EOF inside a container into a syntax error
func (d *decodeState) truncated(err error) error {
	if err == io.EOF {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return err
}

func (d *decodeState) syntaxError(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			fmt.Errorf("%w: %s", errors.ErrInvalidJSON, syntaxError.Error()),
		)
	}
	return errors.NewParsingError("failed to decode JSON", wrapDecodeError(err))
}

func wrapDecodeError(err error) error {
	return fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err)
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts ...Option) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString), opts...)
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte, opts ...Option) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data), opts...)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts ...Option) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file, opts...)
}

// ParseInput interprets a command-line argument. Arguments starting with
// "/", "./" or "../" are file paths, "@name" reads the file name, "-" reads
// stdin and anything else is inline JSON text.
func ParseInput(arg string, stdin io.Reader, opts ...Option) (models.Value, error) {
	switch {
	case strings.TrimSpace(arg) == "":
		return models.Value{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	case arg == "-":
		if stdin == nil {
			return models.Value{}, errors.NewInputError("stdin is not available", errors.ErrNoInput)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return models.Value{}, errors.NewInputError("failed to read from stdin", err)
		}
		return ParseBytes(data, opts...)
	case strings.HasPrefix(arg, "@"):
		return ParseFile(strings.TrimPrefix(arg, "@"), opts...)
	case isFilePath(arg):
		return ParseFile(arg, opts...)
	default:
		return ParseString(arg, opts...)
	}
}

func isFilePath(arg string) bool {
	return strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../")
}
