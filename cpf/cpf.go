// Package cpf normalizes and validates brazilian CPF numbers, which the rest
// of the system uses as the player's primary key.
package cpf

import "strings"

// Normalize strips everything but digits from a raw CPF string.
// Callers must normalize before using a CPF as a store key, since user input
// usually carries formatting punctuation (000.000.000-00).
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether a normalized CPF is well formed: exactly 11
// digits, not all identical, and both check digits consistent with the
// weighted mod-11 sums over the preceding digits.
func Validate(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allSame := true
	for i := 0; i < 11; i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return false
		}
		if cpf[i] != cpf[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}
	return checkDigit(cpf, 9) == int(cpf[9]-'0') && checkDigit(cpf, 10) == int(cpf[10]-'0')
}

// checkDigit computes the check digit over the first n digits, weighted
// n+1 down to 2. A remainder below 2 maps to 0, anything else to 11-remainder.
func checkDigit(cpf string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(cpf[i]-'0') * (n + 1 - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
