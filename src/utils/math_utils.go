package utils

import (
	"fmt"
	"math"
)

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatPercentage renders part's share of total as a two-decimal string,
// "0.00" when the total is zero or negative.
func FormatPercentage(part, total float64) string {
	if total <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", part/total*100)
}
