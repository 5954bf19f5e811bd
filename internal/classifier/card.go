package classifier

import "regexp"

// cardNetwork pairs an issuer name with its number prefix pattern.
// Candidates are bare digit strings, so the patterns are fully anchored.
type cardNetwork struct {
	name string
	re   *regexp.Regexp
}

// cardNetworks is the ordered issuer table. Order is priority: the first
// matching network wins. MasterCard must precede Maestro because the
// 51-55 prefix space would otherwise be shadowed by Maestro's 56-58
// ranges on misordered tables.
var cardNetworks = []cardNetwork{
	{"Visa", regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)},
	{"MasterCard", regexp.MustCompile(`^5[1-5][0-9]{14}$`)},
	{"American Express", regexp.MustCompile(`^3[47][0-9]{13}$`)},
	{"Discover", regexp.MustCompile(`^6(?:011|5[0-9]{2})[0-9]{12}$`)},
	{"JCB", regexp.MustCompile(`^(?:2131|1800|35\d{3})\d{11}$`)},
	{"Diners Club", regexp.MustCompile(`^3(?:0[0-5]|[68][0-9])[0-9]{11}$`)},
	{"Maestro", regexp.MustCompile(`^(?:5018|5020|5038|56|57|58|6304|6759|676[1-3])\d{8,15}$`)},
	{"Verve", regexp.MustCompile(`^(?:506[01]|507[89]|6500)\d{12,15}$`)},
}

// cardNetworkFor returns the issuing network for a digit string, or an
// empty string when no network prefix matches.
func cardNetworkFor(number string) string {
	for _, network := range cardNetworks {
		if network.re.MatchString(number) {
			return network.name
		}
	}
	return ""
}

// cardCandidateRE matches runs of 13-19 digits. Boundary and adjacency
// constraints (not part of a longer digit run, not a decimal fraction)
// are enforced by cardCandidates because RE2 has no lookaround.
var cardCandidateRE = regexp.MustCompile(`[0-9]{13,19}`)

// cardCandidates extracts 13-19 digit substrings that stand alone: not
// embedded in a longer digit/word run, not preceded by a dot, and not
// followed by a decimal fraction. The dot rules exclude version strings
// and floating point numbers (e.g. "1.2345678901234" or coordinates).
func cardCandidates(s string) []string {
	var out []string
	for _, loc := range cardCandidateRE.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			prev := s[start-1]
			if isWordByte(prev) || prev == '.' {
				continue
			}
		}
		if end < len(s) {
			next := s[end]
			if isWordByte(next) {
				continue
			}
			if next == '.' && end+1 < len(s) && isDigitByte(s[end+1]) {
				continue
			}
		}
		out = append(out, s[start:end])
	}
	return out
}

// isWordByte reports whether b is a word character in the regexp sense.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// isDigitByte reports whether b is an ASCII digit.
func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}
