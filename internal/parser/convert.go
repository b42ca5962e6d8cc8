package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/models"
)

// FromGo converts the generic Go representation of JSON (what
// encoding/json produces for interface{} targets) into a models.Value.
// Map keys are sorted since Go maps carry no order.
func FromGo(v any, opts ...Option) (models.Value, error) {
	o := newOptions(opts)
	return fromGo(v, 1, o.MaxDepth)
}

func fromGo(v any, depth, maxDepth int) (models.Value, error) {
	if depth > maxDepth {
		return models.Value{}, errors.NewDepthError(
			fmt.Sprintf("input nesting exceeds %d levels", maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	switch x := v.(type) {
	case nil:
		return models.Null(), nil
	case models.Value:
		return x, nil
	case bool:
		return models.Bool(x), nil
	case string:
		return models.String(x), nil
	case json.Number:
		return models.Number(x.String())
	case float64:
		return models.Float(x)
	case float32:
		return models.Float(float64(x))
	case int:
		return models.Int(int64(x)), nil
	case int8:
		return models.Int(int64(x)), nil
	case int16:
		return models.Int(int64(x)), nil
	case int32:
		return models.Int(int64(x)), nil
	case int64:
		return models.Int(x), nil
	case uint:
		return models.Number(strconv.FormatUint(uint64(x), 10))
	case uint8:
		return models.Int(int64(x)), nil
	case uint16:
		return models.Int(int64(x)), nil
	case uint32:
		return models.Int(int64(x)), nil
	case uint64:
		return models.Number(strconv.FormatUint(x, 10))
	case []any:
		items := make([]models.Value, len(x))
		for i, item := range x {
			val, err := fromGo(item, depth+1, maxDepth)
			if err != nil {
				return models.Value{}, err
			}
			items[i] = val
		}
		return models.Array(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		members := make([]models.Member, len(keys))
		for i, k := range keys {
			val, err := fromGo(x[k], depth+1, maxDepth)
			if err != nil {
				return models.Value{}, err
			}
			members[i] = models.Member{Key: k, Value: val}
		}
		return models.Object(members...)
	default:
		return models.Value{}, errors.NewParsingError(
			fmt.Sprintf("unsupported type %T", v),
			errors.ErrInvalidValue,
		)
	}
}
