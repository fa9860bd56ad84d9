// Package codec implements the flat JSON-like wire format used for every
// request and response body of the service.
//
// Encoding covers scalars, sequences, string-keyed maps, ordered objects and
// products. Decoding is shape-directed and deliberately naive: it only
// understands flat objects whose values contain no commas. Clients depend on
// that exact behavior, so it must not be replaced with a real JSON parser.
package codec

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"stockroom/models"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is an ordered list of fields. It encodes in insertion order, which
// keeps response bodies byte-for-byte reproducible.
type Object []Field

// Encode renders v in wire form. It never fails: unsupported types are
// encoded as the string form of their fmt representation.
func Encode(v any) string {
	var b strings.Builder
	encodeValue(&b, v)
	return b.String()
}

// Success builds the {"success":true,"message":...} envelope.
func Success(message string) string {
	return Encode(Object{{"success", true}, {"message", message}})
}

// Failure builds the {"success":false,"message":...} envelope.
func Failure(message string) string {
	return Encode(Object{{"success", false}, {"message", message}})
}

func encodeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float32:
		writeFloat(b, float64(x), 32)
	case float64:
		writeFloat(b, x, 64)
	case string:
		writeString(b, x)
	case models.Product:
		encodeProduct(b, x)
	case *models.Product:
		if x == nil {
			b.WriteString("null")
			return
		}
		encodeProduct(b, *x)
	case Object:
		encodeObject(b, x)
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, e)
		}
		b.WriteByte(']')
	case error:
		writeString(b, x.Error())
	case fmt.Stringer:
		writeString(b, x.String())
	default:
		encodeReflect(b, v)
	}
}

func encodeProduct(b *strings.Builder, p models.Product) {
	encodeObject(b, Object{
		{"id", p.ID},
		{"name", p.Name},
		{"price", p.Price},
		{"quantity", p.Quantity},
		{"category", p.Category},
		{"totalValue", p.TotalValue()},
	})
}

func encodeObject(b *strings.Builder, o Object) {
	b.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, f.Key)
		b.WriteByte(':')
		encodeValue(b, f.Value)
	}
	b.WriteByte('}')
}

// encodeReflect handles typed slices, string-keyed maps, pointers and named
// scalar types that the fast path in encodeValue does not list.
func encodeReflect(b *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		encodeValue(b, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, rv.Index(i).Interface())
		}
		b.WriteByte(']')
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			writeString(b, fmt.Sprint(v))
			return
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		o := make(Object, 0, len(keys))
		for _, k := range keys {
			o = append(o, Field{Key: k.String(), Value: rv.MapIndex(k).Interface()})
		}
		encodeObject(b, o)
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		writeFloat(b, rv.Float(), 32)
	case reflect.Float64:
		writeFloat(b, rv.Float(), 64)
	case reflect.String:
		writeString(b, rv.String())
	default:
		writeString(b, fmt.Sprint(v))
	}
}

func writeFloat(b *strings.Builder, f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		b.WriteString("null")
		return
	}
	b.WriteString(strconv.FormatFloat(f, 'f', -1, bits))
}

// writeString quotes s, escaping only backslash, double quote, newline,
// carriage return and tab. Every other byte is written as is.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
