package defect

import (
	"strconv"
)

// Parameter keys used by the topology.
const (
	KeyIs     = "IS"     // object found at the defect
	KeyShould = "SHOULD" // object that was expected or claimed
	KeyX2     = "X2"     // x of a second point
	KeyY2     = "Y2"     // y of a second point
	KeyLeft   = "LEFT"   // object on the left side of an edge
	KeyRight  = "RIGHT"  // object on the right side of an edge
)

// Param is one key/value parameter of a record. Keys may repeat.
type Param struct {
	Key   string
	Value string
}

// P builds a parameter.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Point builds the X2/Y2 parameter pair for a second location.
func Point(x, y float64) []Param {
	return []Param{
		{Key: KeyX2, Value: FormatOrdinate(x)},
		{Key: KeyY2, Value: FormatOrdinate(y)},
	}
}

// FormatOrdinate renders an ordinate with the fewest digits that round-trip.
func FormatOrdinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Record is one topology error.
type Record struct {
	Kind   Kind
	X, Y   float64
	Params []Param
}

// Param returns the first value stored under key.
func (r Record) Param(key string) (string, bool) {
	for _, p := range r.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under key, in order.
func (r Record) Values(key string) []string {
	var values []string
	for _, p := range r.Params {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}

// Sink receives topology errors.
type Sink interface {
	Add(kind Kind, x, y float64, params ...Param)
}
