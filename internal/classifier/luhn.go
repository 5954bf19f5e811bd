package classifier

// Luhn reports whether a digit string passes the Luhn checksum.
//
// The check is used to separate structurally plausible card and IMEI
// numbers from arbitrary digit runs (timestamps, counters, hashes).
// The input must contain only ASCII digits; callers extract candidates
// with digit-only patterns before validating.
func Luhn(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
		}
		sum += d/10 + d%10
		double = !double
	}
	return sum%10 == 0
}
