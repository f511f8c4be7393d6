package firestore

import (
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"household/internal/domain/meal"
)

// Documents may have been written by older clients with loosely typed
// fields, so decoding goes through the raw map rather than DataTo.
type document map[string]interface{}

func (d document) str(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (d document) strPtr(key string) *string {
	s, ok := d[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func (d document) float(key string) float64 {
	if f, ok := toFloat(d[key]); ok {
		return f
	}
	return 0
}

func (d document) boolean(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// timestamp accepts native Firestore timestamps and ISO 8601 strings.
func (d document) timestamp(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d document) strings(key string) []string {
	raw, ok := d[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d document) ingredients(key string) []meal.Ingredient {
	raw, ok := d[key].([]interface{})
	if !ok {
		return []meal.Ingredient{}
	}
	out := make([]meal.Ingredient, 0, len(raw))
	for _, v := range raw {
		switch ing := v.(type) {
		case string:
			out = append(out, meal.Ingredient{Name: ing})
		case map[string]interface{}:
			m := document(ing)
			i := meal.Ingredient{Name: m.str("name"), Unit: m.str("unit")}
			if f, ok := toFloat(ing["quantity"]); ok {
				i.Quantity = &f
			}
			out = append(out, i)
		}
	}
	return out
}

// toFloat reads numbers and numeric strings.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func encodeIngredients(in []meal.Ingredient) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, ing := range in {
		m := map[string]interface{}{"name": ing.Name}
		if ing.Quantity != nil {
			m["quantity"] = *ing.Quantity
		}
		if ing.Unit != "" {
			m["unit"] = ing.Unit
		}
		out = append(out, m)
	}
	return out
}

func stringOrNil(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func isoNow(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
