package utils

import "testing"

func TestValidHSCode(t *testing.T) {
	valid := []string{"8471", "8471.3010", "1006.30", "84713010", " 8471 "}
	for _, c := range valid {
		if !ValidHSCode(c) {
			t.Errorf("ValidHSCode(%q) = false, want true", c)
		}
	}

	invalid := []string{"", "847", "8471.3", "ABCD", "8471-3010", "847130101"}
	for _, c := range invalid {
		if ValidHSCode(c) {
			t.Errorf("ValidHSCode(%q) = true, want false", c)
		}
	}
}

func TestValidNTN(t *testing.T) {
	valid := []string{"1234567-8", "12345678"}
	for _, c := range valid {
		if !ValidNTN(c) {
			t.Errorf("ValidNTN(%q) = false, want true", c)
		}
	}

	invalid := []string{"", "123456", "1234567-", "abcdefg-1"}
	for _, c := range invalid {
		if ValidNTN(c) {
			t.Errorf("ValidNTN(%q) = true, want false", c)
		}
	}
}
