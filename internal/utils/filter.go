package utils

import (
	"strconv"
	"unicode"
)

// HasWordChars reports whether s holds at least one letter or digit.
func HasWordChars(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	str := strconv.Itoa(n)
	neg := n < 0
	if neg {
		str = str[1:]
	}
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	out := make([]byte, 0, len(str)+len(str)/3+1)
	if neg {
		out = append(out, '-')
	}
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, str[i])
	}
	return string(out)
}
