// Package scale rescales free-text ingredient quantities and per-serving
// nutrition to an arbitrary serving count. All functions are pure and total:
// input that cannot be parsed passes through unchanged, nothing here errors.
package scale

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern splits a quantity string into a leading numeric token
// (decimal or simple fraction) and a trailing free-text unit.
var amountPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?(?:/\d+)?)\s*(.*)$`)

// Amount rescales a quantity like "1/2 cup" or "2 tbsp" from originalServings
// to newServings. Strings with no leading numeric token ("pinch", "to taste")
// are returned unchanged.
func Amount(original string, originalServings, newServings int) string {
	if originalServings <= 0 {
		return original
	}

	m := amountPattern.FindStringSubmatch(strings.TrimSpace(original))
	if m == nil {
		return original
	}
	numberPart, unit := m[1], m[2]

	var value float64
	if idx := strings.IndexByte(numberPart, '/'); idx >= 0 {
		num, errN := strconv.ParseFloat(numberPart[:idx], 64)
		den, errD := strconv.ParseFloat(numberPart[idx+1:], 64)
		if errN != nil || errD != nil || den == 0 {
			return original
		}
		value = num / den
	} else {
		v, err := strconv.ParseFloat(numberPart, 64)
		if err != nil {
			return original
		}
		value = v
	}

	factor := float64(newServings) / float64(originalServings)
	scaled := value * factor

	return strings.TrimSpace(formatScaled(scaled) + " " + unit)
}

// formatScaled applies the display policy: tiny values keep two decimals,
// sub-unit values one decimal, whole numbers no decimal point, everything
// else one decimal. Ties round half away from zero (0.25 cup displays as
// "0.3 cup", not "0.2 cup"); trailing zeros and a dangling point are stripped.
func formatScaled(v float64) string {
	var s string
	switch {
	case v < 0.1:
		s = strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
	case v < 1:
		s = strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	}
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// Macros is an aggregate per-serving nutrition record.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Apply multiplies every field by newServings/originalServings and rounds
// each to the nearest integer independently. No cross-field renormalization.
func Apply(m Macros, originalServings, newServings int) Macros {
	if originalServings <= 0 {
		return m
	}
	factor := float64(newServings) / float64(originalServings)
	return Macros{
		Calories: math.Round(m.Calories * factor),
		Protein:  math.Round(m.Protein * factor),
		Carbs:    math.Round(m.Carbs * factor),
		Fat:      math.Round(m.Fat * factor),
		Fiber:    math.Round(m.Fiber * factor),
	}
}
