/*
Package format
File: dollar.go
Description:
    Money formatting for display.
    Amounts below the threshold print in full with cents. Larger amounts are
    scaled by thousands and carry a suffix (k, M, B and up).
*/

package format

import (
	"math"
	"strconv"
	"strings"
)

var suffixes = []string{"", "k", "M", "B", "T", "Q", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// Dollar renders a currency amount for display.
// Amounts below threshold are shown in full with cents ("$12.34"); larger amounts are
// scaled by thousands and suffixed ("$1.23M"), using min(max(steps, 2), decimals) digits.
func Dollar(num, threshold float64, decimals int) string {
	if num < threshold {
		return "$" + strconv.FormatFloat(num, 'f', 2, 64)
	}

	sign := ""
	if num < 0 {
		sign = "-"
	}
	num = math.Abs(num)

	i := 0
	for num >= 1000 && i < len(suffixes)-1 {
		num /= 1000
		i++
	}

	digits := min(max(i, 2), decimals)
	if digits < 0 {
		digits = 0
	}
	s := strings.TrimSuffix(strconv.FormatFloat(num, 'f', digits, 64), ".0")
	return "$" + sign + s + suffixes[i]
}

// Rate renders a per-second amount, e.g. "$1.50/s".
func Rate(num, threshold float64, decimals int) string {
	return Dollar(num, threshold, decimals) + "/s"
}
