// Package jsonsafe rewrites arbitrary Go values into values encoding/json can always encode.
//
// Coerce recurses without cycle detection. Payloads from the agent and encyclopedia
// services are trees, so depth is bounded only by the goroutine stack.
package jsonsafe

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"
)

// Coerce returns a value built only from nil, bool, string, float64/int kinds,
// []any and map[string]any. It never fails: unknown values become strings.
//
// Arbitrary-precision numbers (json.Number, *big.Float, *big.Rat, *big.Int) are
// converted to float64 and may lose precision. NaN and infinities have no JSON
// form and are rendered as strings.
func Coerce(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return val
	case float32:
		return coerceFloat(float64(val))
	case float64:
		return coerceFloat(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Coerce(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Coerce(item)
		}
		return out
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return coerceFloat(f)
	case *big.Float:
		if val == nil {
			return nil
		}
		f, _ := val.Float64()
		return coerceFloat(f)
	case *big.Rat:
		if val == nil {
			return nil
		}
		f, _ := val.Float64()
		return coerceFloat(f)
	case *big.Int:
		if val == nil {
			return nil
		}
		f, _ := new(big.Float).SetInt(val).Float64()
		return coerceFloat(f)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return string(val)
		}
		return Coerce(decoded)
	case json.Marshaler:
		return viaJSON(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}

	return coerceReflect(reflect.ValueOf(v))
}

func coerceReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Coerce(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[fmt.Sprint(iter.Key().Interface())] = Coerce(iter.Value().Interface())
			}
			return out
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Coerce(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Coerce(rv.Index(i).Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return coerceFloat(rv.Float())
	case reflect.Struct:
		return viaJSON(rv.Interface())
	}
	return fmt.Sprint(rv.Interface())
}

// viaJSON round-trips v through encoding/json so struct tags decide the shape.
func viaJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return Coerce(decoded)
}

func coerceFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

// Map coerces m and returns the result as a map, which Coerce always produces
// for string-keyed maps.
func Map(m map[string]any) map[string]any {
	out, _ := Coerce(m).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}
