package utils

import (
	"strconv"
	"strings"
)

// NormalizeRut strips dots, dashes and spaces and upper-cases the check digit:
// "12.345.678-5" -> "123456785".
func NormalizeRut(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(rut)))
}

// ValidRut validates a Chilean RUT using the módulo 11 check digit.
func ValidRut(rut string) bool {
	n := NormalizeRut(rut)
	if len(n) < 2 || len(n) > 9 {
		return false
	}
	body, dv := n[:len(n)-1], n[len(n)-1]
	if _, err := strconv.Atoi(body); err != nil {
		return false
	}

	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	var expected byte
	switch rest := 11 - sum%11; rest {
	case 11:
		expected = '0'
	case 10:
		expected = 'K'
	default:
		expected = byte('0' + rest)
	}
	return dv == expected
}
