package provider

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Trailing legal-form tokens stripped to produce the short variant of an organization name.
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true, "llc": true, "llp": true, "lp": true,
	"ltd": true, "limited": true, "corp": true, "corporation": true, "co": true,
	"company": true, "plc": true, "gmbh": true, "ag": true, "sa": true, "sas": true,
	"sarl": true, "bv": true, "nv": true, "ab": true, "as": true, "a/s": true,
	"aps": true, "oy": true, "oyj": true, "srl": true, "spa": true, "pty": true,
	"kg": true, "se": true,
}

// NormalizeName applies NFC normalization and collapses runs of whitespace.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// foldKey is the case-insensitive identity of a name. A Caser is stateful, so one is built per call.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

// stripLegalSuffix removes trailing legal-form tokens ("Acme, Inc." -> "Acme").
func stripLegalSuffix(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 {
		last := strings.ToLower(strings.Trim(words[len(words)-1], ".,()"))
		if !legalSuffixes[last] && !legalSuffixes[strings.ReplaceAll(last, ".", "")] {
			break
		}
		words = words[:len(words)-1]
	}
	out := strings.Join(words, " ")
	return strings.TrimRight(out, " ,.")
}

// NameVariants expands names into normalized search variants, deduplicated
// case-insensitively in first-seen order. Junk names are dropped.
func NameVariants(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		v = NormalizeName(v)
		if isJunkName(v) {
			return
		}
		k := foldKey(v)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, v)
	}
	for _, n := range names {
		full := NormalizeName(n)
		add(full)
		add(stripLegalSuffix(full))
	}
	return out
}

// isJunkName filters values that can never be a useful organization search.
func isJunkName(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= 1 {
		return true
	}
	if strings.Contains(s, "@") {
		return true
	}
	digits := true
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			digits = false
			break
		}
	}
	return digits
}
