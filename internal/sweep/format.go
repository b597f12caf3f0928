package sweep

import "strconv"

// significantDigits bounds the precision of generated sweep values and of
// formatted suffixes, so round-off from range arithmetic never leaks into
// directory names.
const significantDigits = 15

// snap rounds v to significantDigits significant digits.
func snap(v float64) float64 {
	s, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', significantDigits, 64), 64)
	if err != nil {
		return v
	}
	return s
}

// FormatValue renders v for output names: the shortest fixed-point decimal
// that round-trips the snapped value (0.01, 1, 1.2, 1000000).
func FormatValue(v float64) string {
	return strconv.FormatFloat(snap(v), 'f', -1, 64)
}
