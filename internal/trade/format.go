package trade

import (
	"strings"

	"github.com/shopspring/decimal"
)

// divisionPlaces is the number of fractional digits kept by price division.
const divisionPlaces = 20

// timeLayout renders DD-MMM HH:mm:ss.
const timeLayout = "02-Jan 15:04:05"

var smallValue = decimal.New(1, -2)

// placesFor picks the fractional digits for v: small below 0.01, normal otherwise.
func placesFor(v decimal.Decimal, small, normal int32) int32 {
	if v.LessThan(smallValue) {
		return small
	}
	return normal
}

// formatFixed rounds half away from zero to places digits and groups the
// integer part in thousands: 1234567.891 -> "1,234,567.89".
func formatFixed(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 1)
	if neg {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
