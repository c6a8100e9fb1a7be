package schema

import (
	"fmt"
	"math"
	"time"

	"raven/pkg/utils"
)

// coerce converts value into the canonical Go type for kind:
// string, int64, float64, bool, []string or time.Time (UTC).
// Inputs decoded from JSON, YAML or a store driver are accepted.
func coerce(kind FieldKind, value any) (any, error) {
	switch kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case KindInt:
		return toInt(value)
	case KindFloat:
		return toFloat(value)
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case KindStringList:
		return toStringList(value)
	case KindTime:
		return toTime(value)
	}
	return nil, kindMismatch(kind, value)
}

func kindMismatch(kind FieldKind, value any) error {
	return fmt.Errorf("expected %s, got %T", kind, value)
}

// number is implemented by json.Number and attributevalue.Number, which
// carry the decimal text so integers keep full precision
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

func toInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), nil
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
	case float64:
		if i, ok := integral(v); ok {
			return i, nil
		}
	case float32:
		if i, ok := integral(float64(v)); ok {
			return i, nil
		}
	case number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		// "30.0" or "3e1"
		if f, err := v.Float64(); err == nil {
			if i, ok := integral(f); ok {
				return i, nil
			}
		}
	}
	return nil, kindMismatch(KindInt, value)
}

// integral converts f when it is a whole number inside the int64 range.
// 2^63 is exactly representable, so the upper bound is exclusive.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	}
	return nil, kindMismatch(KindFloat, value)
}

func toStringList(value any) (any, error) {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected %s, got element of type %T", KindStringList, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, kindMismatch(KindStringList, value)
}

func toTime(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := utils.ParseRFC3339(v)
		if err != nil {
			return nil, fmt.Errorf("expected RFC 3339 time: %w", err)
		}
		return t, nil
	}
	return nil, kindMismatch(KindTime, value)
}
