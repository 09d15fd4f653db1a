package eth

import (
	"math/big"
	"strings"
)

// FormatUnits renders an integer token amount with the given number of
// decimals, trimming trailing zeros ("1500000000000000000", 18 -> "1.5").
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	digits := abs.String()
	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}

		whole, frac := digits[:len(digits)-decimals], strings.TrimRight(digits[len(digits)-decimals:], "0")
		digits = whole
		if frac != "" {
			digits += "." + frac
		}
	}

	if neg {
		return "-" + digits
	}
	return digits
}
