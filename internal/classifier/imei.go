package classifier

import "regexp"

// imeiKeyRE matches key names that plausibly carry an IMEI, including
// hashed variants that SDKs use to pretend the identifier is anonymized
// (imei_md5, imei-sha1, imeihash). The common "imeei" typo appears in
// real SDK traffic and is matched deliberately.
var imeiKeyRE = regexp.MustCompile(`(?i)\b(?:imei|imeei|imeid|imei[_\-.]?(?:md5|sha1|hash))\b`)

// imeiValueRE matches standalone 15-digit runs, the IMEI wire length.
var imeiValueRE = regexp.MustCompile(`\b\d{15}\b`)

// imeiCandidates extracts the 15-digit substrings of value and splits
// them by Luhn validity. Invalid candidates are returned separately
// rather than discarded: they feed the imei_false_positive bucket, which
// exists so the IMEI rule's false-positive rate can be measured.
//
// The split only happens when the key looks IMEI-ish; a bare 15-digit
// value under an unrelated key is left for the other rules.
func imeiCandidates(key, value string) (valid, invalid []string) {
	if !imeiKeyRE.MatchString(key) {
		return nil, nil
	}
	for _, num := range imeiValueRE.FindAllString(value, -1) {
		if Luhn(num) {
			valid = append(valid, num)
		} else {
			invalid = append(invalid, num)
		}
	}
	return valid, invalid
}
