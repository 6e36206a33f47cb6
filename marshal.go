package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// typeClass is the closed classification of a driver-reported column type.
// Each SQL dialect maps its own type names onto these classes, so the
// conversion logic below never has to know dialect-specific type strings.
type typeClass int

const (
	classText typeClass = iota
	classInt
	classFloat
	classBool
	classBinary
)

// marshalValue converts one driver-provided column value into its canonical
// form: nil, bool, int64, float64 or string. It never fails; when a value
// cannot be decoded at the class's specific type it degrades to the best
// available textual form, and to nil when there is none.
func marshalValue(class typeClass, v any) any {
	if v == nil {
		return nil
	}

	switch class {
	case classInt:
		switch x := v.(type) {
		case int64:
			return x
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case []byte:
			if n, err := strconv.ParseInt(string(x), 10, 64); err == nil {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n
			}
		case float64:
			return int64(x)
		}

	case classFloat:
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		case []byte:
			if f, err := strconv.ParseFloat(string(x), 64); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f
			}
		}

	case classBool:
		switch x := v.(type) {
		case bool:
			return x
		case int64:
			return x != 0
		case []byte:
			if b, err := strconv.ParseBool(string(x)); err == nil {
				return b
			}
		case string:
			if b, err := strconv.ParseBool(x); err == nil {
				return b
			}
		}

	case classBinary:
		// Binary payloads are lossily converted to UTF-8 text. Lossless
		// round-tripping is explicitly not provided.
		switch x := v.(type) {
		case []byte:
			return lossyUTF8(x)
		case string:
			return x
		}
	}

	return stringify(v)
}

// marshalDynamic keeps the driver value's own typing for columns whose type
// the driver does not report (expressions, dynamically typed engines), only
// normalizing shapes the canonical model cannot carry.
func marshalDynamic(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x
	case []byte:
		return lossyUTF8(x)
	default:
		return stringify(v)
	}
}

// stringify renders any driver value as text. Used both as the classText
// conversion and as the degradation path for failed narrow decodes.
func stringify(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return lossyUTF8(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", x)
	}
}

// lossyUTF8 converts raw bytes to a valid UTF-8 string, replacing invalid
// sequences with the replacement character.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
