package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stockroom/models"
)

// ErrMalformedField is wrapped by every decode error caused by a numeric
// field whose text does not parse.
var ErrMalformedField = errors.New("malformed field")

// DecodeProduct reads a product body. Absent price and quantity default to 0.
// A blank body yields a nil product and no error.
func DecodeProduct(body string) (*models.Product, error) {
	f, ok := flatFields(body)
	if !ok {
		return nil, nil
	}
	price, err := floatField(f, "price", 0)
	if err != nil {
		return nil, err
	}
	quantity, err := intField(f, "quantity", 0)
	if err != nil {
		return nil, err
	}
	return &models.Product{
		ID:       f["id"],
		Name:     f["name"],
		Price:    price,
		Quantity: quantity,
		Category: f["category"],
	}, nil
}

// DecodeCredentials reads a login body.
func DecodeCredentials(body string) (*models.CredentialRequest, error) {
	f, ok := flatFields(body)
	if !ok {
		return nil, nil
	}
	return &models.CredentialRequest{
		Username: f["username"],
		Password: f["password"],
	}, nil
}

// DecodeStockAdjustment reads a stock-in or stock-out body. An absent amount
// defaults to 0, which the inventory rejects.
func DecodeStockAdjustment(body string) (*models.StockAdjustment, error) {
	f, ok := flatFields(body)
	if !ok {
		return nil, nil
	}
	amount, err := intField(f, "amount", 0)
	if err != nil {
		return nil, err
	}
	return &models.StockAdjustment{ID: f["id"], Amount: amount}, nil
}

// DecodeUpdate reads a partial product edit. An absent price becomes
// models.NoPriceChange.
func DecodeUpdate(body string) (*models.UpdateRequest, error) {
	f, ok := flatFields(body)
	if !ok {
		return nil, nil
	}
	price, err := floatField(f, "price", models.NoPriceChange)
	if err != nil {
		return nil, err
	}
	return &models.UpdateRequest{
		Name:     f["name"],
		Price:    price,
		Category: f["category"],
	}, nil
}

// flatFields splits body into raw field values. The split is not aware of
// quoting or nesting: a comma anywhere ends the current field, and only the
// first colon of a segment separates key from value. Segments without a colon
// are dropped and a repeated key keeps its last value.
func flatFields(body string) (map[string]string, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, false
	}
	if len(body) >= 2 && body[0] == '{' && body[len(body)-1] == '}' {
		body = body[1 : len(body)-1]
	}

	fields := make(map[string]string)
	for _, segment := range strings.Split(body, ",") {
		key, value, found := strings.Cut(segment, ":")
		if !found {
			continue
		}
		fields[unquote(key)] = unquote(value)
	}
	return fields, true
}

// unquote trims s, strips one layer of surrounding double quotes and reverses
// the encoder's escapes in a single pass, so `\\` becomes one backslash that
// is never read again as the start of another escape. Unknown escapes are kept
// verbatim.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(c)
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

func floatField(fields map[string]string, name string, def float64) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, name, raw)
	}
	return v, nil
}

func intField(fields map[string]string, name string, def int) (int, error) {
	raw, ok := fields[name]
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, name, raw)
	}
	return v, nil
}
