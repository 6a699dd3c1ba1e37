package identity_test

import (
	"strings"
	"testing"

	"ratescope/internal/identity"
)

func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func TestKey_Deterministic(t *testing.T) {
	a := identity.Key(pstr("Grand Hotel"), pfloat(40.7128), pfloat(-74.0060))
	b := identity.Key(pstr("Grand Hotel"), pfloat(40.7128), pfloat(-74.0060))
	if a != b {
		t.Fatalf("same input produced different keys: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("key length = %d, want 16", len(a))
	}
	if a != strings.ToUpper(a) {
		t.Fatalf("key not uppercased: %s", a)
	}
}

func TestKey_DedupAcrossCaseWhitespaceAndCoordNoise(t *testing.T) {
	a := identity.Key(pstr("Grand Hotel"), pfloat(40.7128), pfloat(-74.0060))
	b := identity.Key(pstr("  grand   hotel  "), pfloat(40.71280001), pfloat(-74.00604999))
	if a != b {
		t.Fatalf("variants should collapse to one key: %s vs %s", a, b)
	}
}

func TestKey_PunctuationCollapses(t *testing.T) {
	a := identity.Key(pstr("The Ritz-Carlton, Chicago"), pfloat(41.889), pfloat(-87.622))
	b := identity.Key(pstr("the ritz carlton chicago"), pfloat(41.889), pfloat(-87.622))
	if a != b {
		t.Fatalf("punctuation should not change the key: %s vs %s", a, b)
	}
}

func TestKey_NilInputs(t *testing.T) {
	a := identity.Key(nil, nil, nil)
	b := identity.Key(pstr(""), pfloat(0), pfloat(0))
	if a != b {
		t.Fatalf("nil and zero inputs should agree: %s vs %s", a, b)
	}
}

func TestKey_DistinctHotelsDistinctKeys(t *testing.T) {
	a := identity.Key(pstr("Grand Hotel"), pfloat(40.713), pfloat(-74.006))
	b := identity.Key(pstr("Grand Hotel"), pfloat(41.889), pfloat(-87.622))
	if a == b {
		t.Fatalf("different coordinates should produce different keys")
	}
}

func TestAcronymKey(t *testing.T) {
	got := identity.AcronymKey(pstr("Grand Hotel"), pfloat(40.7128), pfloat(-74.0060))
	// g + h, then digits of 40.713 and -74.006.
	if got != "GH4071374006" {
		t.Fatalf("acronym key = %s, want GH4071374006", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Grand   Hotel  ", "grand hotel"},
		{"Hôtel-du Lac", "h tel du lac"},
		{"", ""},
	}
	for _, c := range cases {
		if got := identity.Normalize(&c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
