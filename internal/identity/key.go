// Package identity derives stable dedup keys for hotels from their name and
// coordinates. Two schemes exist: the hash scheme used by new ingestion, and
// a legacy acronym scheme kept read-compatible for records stored under it.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Key returns the canonical hotel key: SHA-256 of
// "normalizedName|lat|lon" (coordinates at 3 decimal places, nil -> 0),
// first 16 hex chars, uppercased. Deterministic across restarts.
func Key(name *string, lat, lon *float64) string {
	sig := Normalize(name) + "|" + coord(lat) + "|" + coord(lon)
	sum := sha256.Sum256([]byte(sig))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:16])
}

// AcronymKey is the legacy scheme: uppercased first letters of the name's
// words followed by the digits of both coordinates (3 decimal places, signs
// and separators stripped). Human-debuggable but collision-prone; new
// ingestion must not mint keys with it.
func AcronymKey(name *string, lat, lon *float64) string {
	var b strings.Builder
	for _, w := range strings.Fields(Normalize(name)) {
		b.WriteByte(w[0])
	}
	b.WriteString(digits(coord(lat)))
	b.WriteString(digits(coord(lon)))
	return strings.ToUpper(b.String())
}

// Normalize lowercases the name, collapses non-alphanumeric runs to single
// spaces and trims. Nil normalizes to the empty string.
func Normalize(name *string) string {
	if name == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(len(*name))
	space := false
	for _, r := range strings.ToLower(*name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// coord renders a coordinate at 3 decimal places; nil reads as 0.
func coord(v *float64) string {
	if v == nil {
		return strconv.FormatFloat(0, 'f', 3, 64)
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
