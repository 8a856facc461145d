package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
)

var (
	errNotObject  = errors.New("request body must be a JSON object")
	errNotString  = errors.New("must be a string")
	errNotInteger = errors.New("must be an integer")
	errOutOfRange = errors.New("is out of range")
)

func parseObject(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// decodeField decodes one JSON value into a pointer field. JSON null is a
// type error: a field is either absent or carries a value.
func decodeField(msg json.RawMessage, field reflect.Value) error {
	if field.Kind() != reflect.Pointer {
		return json.Unmarshal(msg, field.Addr().Interface())
	}

	elem := field.Type().Elem()
	isNull := bytes.Equal(bytes.TrimSpace(msg), []byte("null"))

	switch elem.Kind() {
	case reflect.String:
		var s string
		if isNull || json.Unmarshal(msg, &s) != nil {
			return errNotString
		}
		field.Set(reflect.ValueOf(&s))
		return nil

	case reflect.Int, reflect.Int32, reflect.Int64:
		if isNull {
			return errNotInteger
		}
		n, err := parseInteger(msg)
		if err != nil {
			return err
		}
		v := reflect.New(elem)
		v.Elem().SetInt(n)
		field.Set(v)
		return nil
	}

	return json.Unmarshal(msg, field.Addr().Interface())
}

// parseInteger accepts any JSON number with no fractional part, so 4 and
// 4.0 are both the integer 4, and rejects values outside the int32 range.
func parseInteger(msg json.RawMessage) (int64, error) {
	// json.Number would otherwise accept a quoted number.
	if trimmed := bytes.TrimSpace(msg); len(trimmed) == 0 || trimmed[0] == '"' {
		return 0, errNotInteger
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return 0, errNotInteger
	}

	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}
