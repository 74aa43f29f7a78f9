package core

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Optional value transforms applied to a non-absent resolved value before
// it is committed to output.
const (
	TransformIdentity          = "identity"
	TransformToString          = "to_string"
	TransformToInt             = "to_int"
	TransformToFloat           = "to_float"
	TransformToBool            = "to_bool"
	TransformTrim              = "trim"
	TransformLowercase         = "lowercase"
	TransformUppercase         = "uppercase"
	TransformUnixTimeToRFC3339 = "unix_time_to_rfc3339"
)

type TransformFunc func(value any) (any, error)

var transformFuncs = map[string]TransformFunc{
	TransformIdentity: func(value any) (any, error) { return value, nil },
	TransformToString: func(value any) (any, error) { return fmt.Sprint(value), nil },
	TransformToInt: func(value any) (any, error) {
		return toInt64(value)
	},
	TransformToFloat: func(value any) (any, error) {
		return toFloat64(value)
	},
	TransformToBool: func(value any) (any, error) {
		return toBool(value)
	},
	TransformTrim: func(value any) (any, error) {
		text, err := requireString(value)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(text), nil
	},
	TransformLowercase: func(value any) (any, error) {
		text, err := requireString(value)
		if err != nil {
			return nil, err
		}
		return strings.ToLower(text), nil
	},
	TransformUppercase: func(value any) (any, error) {
		text, err := requireString(value)
		if err != nil {
			return nil, err
		}
		return strings.ToUpper(text), nil
	},
	TransformUnixTimeToRFC3339: func(value any) (any, error) {
		seconds, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return time.Unix(seconds, 0).UTC().Format(time.RFC3339), nil
	},
}

// NormalizeTransform lowercases and trims a transform name; empty means
// identity.
func NormalizeTransform(name string) string {
	candidate := strings.TrimSpace(strings.ToLower(name))
	if candidate == "" {
		return TransformIdentity
	}
	return candidate
}

func IsSupportedTransform(name string) bool {
	_, ok := transformFuncs[NormalizeTransform(name)]
	return ok
}

func ApplyTransform(name string, value any) (any, error) {
	fn, ok := transformFuncs[NormalizeTransform(name)]
	if !ok {
		return nil, fmt.Errorf("core: unsupported transform %q", name)
	}
	return fn(value)
}

func toInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case bool:
		if typed {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return parsed, nil
		}
		parsed, err := typed.Float64()
		if err != nil {
			return 0, fmt.Errorf("core: parse number as int: %w", err)
		}
		return int64(parsed), nil
	case string:
		candidate := strings.TrimSpace(typed)
		if candidate == "" {
			return 0, fmt.Errorf("core: empty string cannot convert to int")
		}
		parsed, err := strconv.ParseInt(candidate, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("core: parse string as int: %w", err)
		}
		return parsed, nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return v.Int(), nil
	case v.CanUint():
		return int64(v.Uint()), nil
	case v.CanFloat():
		return int64(v.Float()), nil
	}
	return 0, fmt.Errorf("core: unsupported int conversion from %T", value)
}

func toFloat64(value any) (float64, error) {
	switch typed := value.(type) {
	case bool:
		if typed {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, fmt.Errorf("core: parse number as float: %w", err)
		}
		return parsed, nil
	case string:
		candidate := strings.TrimSpace(typed)
		if candidate == "" {
			return 0, fmt.Errorf("core: empty string cannot convert to float")
		}
		parsed, err := strconv.ParseFloat(candidate, 64)
		if err != nil {
			return 0, fmt.Errorf("core: parse string as float: %w", err)
		}
		return parsed, nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return float64(v.Int()), nil
	case v.CanUint():
		return float64(v.Uint()), nil
	case v.CanFloat():
		return v.Float(), nil
	}
	return 0, fmt.Errorf("core: unsupported float conversion from %T", value)
}

func toBool(value any) (bool, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return false, fmt.Errorf("core: parse number as bool: %w", err)
		}
		return parsed != 0, nil
	case string:
		switch strings.TrimSpace(strings.ToLower(typed)) {
		case "true", "1", "yes", "y":
			return true, nil
		case "false", "0", "no", "n":
			return false, nil
		default:
			return false, fmt.Errorf("core: parse string as bool: %q", typed)
		}
	}
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return v.Int() != 0, nil
	case v.CanUint():
		return v.Uint() != 0, nil
	case v.CanFloat():
		return v.Float() != 0, nil
	}
	return false, fmt.Errorf("core: unsupported bool conversion from %T", value)
}

func requireString(value any) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("core: expected string input for text transform, got %T", value)
	}
	return text, nil
}
