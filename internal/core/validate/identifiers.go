package validate

import "strings"

// IsNPI reports whether s is a 10-digit National Provider Identifier with a
// valid Luhn check digit (computed over the "80840" card-issuer prefix).
func IsNPI(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 24 // Luhn contribution of the 80840 prefix
	for i := 0; i < 9; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	last := s[9]
	if last < '0' || last > '9' {
		return false
	}
	check := (10 - sum%10) % 10
	return int(last-'0') == check
}

// IsTIN reports whether s is a 9-digit tax id, optionally written NN-NNNNNNN.
func IsTIN(s string) bool {
	if len(s) == 10 && s[2] == '-' {
		s = s[:2] + s[3:]
	}
	if len(s) != 9 {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}
