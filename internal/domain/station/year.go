package station

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Year is an optional calendar year. The zero value is NoYear, which reads
// as "no bound" when used as a station's begin or end year.
type Year struct {
	value int
	set   bool
}

// NoYear is the absent year.
var NoYear = Year{}

// MinYear and MaxYear bound every year read from a feed or a query,
// whatever its literal form.
const (
	MinYear = math.MinInt32
	MaxYear = math.MaxInt32
)

// InRange reports whether y lies within [MinYear, MaxYear].
func InRange(y int) bool {
	return y >= MinYear && y <= MaxYear
}

// YearOf returns a present year.
func YearOf(y int) Year {
	return Year{value: y, set: true}
}

// Get returns the year and whether it is present.
func (y Year) Get() (int, bool) {
	return y.value, y.set
}

// IsSet reports whether the year is present.
func (y Year) IsSet() bool {
	return y.set
}

// String renders the year, or "-" when absent.
func (y Year) String() string {
	if !y.set {
		return "-"
	}
	return strconv.Itoa(y.value)
}

// MarshalJSON encodes a present year as a number and an absent one as null.
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(y.value)), nil
}

// UnmarshalJSON never fails on well-formed JSON: anything that is not an
// integral number decodes to NoYear.
func (y *Year) UnmarshalJSON(b []byte) error {
	*y = yearFromRaw(b)
	return nil
}

func yearFromRaw(raw json.RawMessage) Year {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NoYear
	}
	switch raw[0] {
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
	default:
		return NoYear
	}
	if n, err := strconv.Atoi(string(raw)); err == nil {
		if !InRange(n) {
			return NoYear
		}
		return YearOf(n)
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || f < MinYear || f > MaxYear {
		return NoYear
	}
	return YearOf(int(f))
}
