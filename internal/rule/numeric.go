package rule

import "strconv"

// LeadingFloat converts the longest numeric prefix of s to a float64,
// returning 0 when s does not start with a number. Leading spaces and tabs
// are skipped; trailing garbage is ignored, so "12abc" is 12 and "abc" is 0.
func LeadingFloat(s string) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := countDigits(s[i:])
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		if n := countDigits(s[i+1:]); n > 0 {
			fracDigits = n
			i += 1 + n
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := countDigits(s[j:]); n > 0 {
			i = j + n
		}
	}

	// A range error still yields ±Inf or 0, which is what we want here.
	f, _ := strconv.ParseFloat(s[start:i], 64)
	return f
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
