package utils

import "testing"

func TestNormalizeRegistration(t *testing.T) {
	cases := map[string]string{
		" ab12 cde ": "AB12CDE",
		"AB-12-CDE":  "AB12CDE",
		"ab12cde":    "AB12CDE",
		"":           "",
		"  -  ":      "",
	}
	for input, want := range cases {
		if got := NormalizeRegistration(input); got != want {
			t.Fatalf("NormalizeRegistration(%q) = %q, want %q", input, got, want)
		}
	}
}
