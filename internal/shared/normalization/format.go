package normalization

import "strconv"

// Plural renders "1 person" / "4 people".
func Plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

// Money renders a price with two decimals and a dollar sign.
func Money(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', 2, 64)
}
