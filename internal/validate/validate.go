// Package validate parses the free-form year and price fields.
// The helpers never fail hard: a bad value is reported as ok == false.
package validate

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MinYear is the earliest publication year accepted.
const MinYear = 1000

// Year parses text as a publication year in [MinYear, current year + 1].
func Year(text string) (int, bool) {
	return YearAt(text, time.Now())
}

// YearAt is Year with an explicit clock.
func YearAt(text string, now time.Time) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if !YearInRange(year, now) {
		return 0, false
	}
	return year, true
}

// YearInRange reports whether year lies in [MinYear, now.Year()+1].
func YearInRange(year int, now time.Time) bool {
	return year >= MinYear && year <= now.Year()+1
}

// Price parses text as a non-negative real number.
func Price(text string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	if !PriceValid(price) {
		return 0, false
	}
	return price, true
}

// PriceValid rejects NaN, infinities and negative values.
func PriceValid(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price >= 0
}

// Required trims text and reports whether anything is left.
func Required(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}
