package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// Money renders an amount with thousands separators, e.g. "USD 1,250.50".
// TWD amounts are whole dollars in practice and drop the cents.
func Money(amount float64, currency domain.Currency) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := 2
	if currency == domain.CurrencyTWD && amount == float64(int64(amount)) {
		digits = 0
	}
	s := strconv.FormatFloat(amount, 'f', digits, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString("." + frac)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return fmt.Sprintf("%s %s", currency, out)
}
