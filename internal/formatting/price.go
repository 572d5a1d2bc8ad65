package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPrice форматирует цену из центов: 2500 -> "$25.00 CAD"
func FormatPrice(cents int64, currency string) string {
	return fmt.Sprintf("%s %s", formatDollars(cents, true), currency)
}

// FormatPriceShort форматирует цену без центов, если они равны 0: 2500 -> "$25"
func FormatPriceShort(cents int64) string {
	return formatDollars(cents, cents%100 != 0)
}

func formatDollars(cents int64, withCents bool) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	dollars := groupThousands(cents / 100)
	if !withCents {
		return fmt.Sprintf("%s$%s", sign, dollars)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, dollars, cents%100)
}

// groupThousands 1234567 -> "1,234,567"
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
