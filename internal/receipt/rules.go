package receipt

import "regexp"

// lineRule is a named pattern evaluated against a single line. Skip markers
// are data: adding a new non-item marker means appending a rule, not touching
// the scan loop.
type lineRule struct {
	name string
	re   *regexp.Regexp
}

var skipRules = []lineRule{
	{"store-coupon", regexp.MustCompile(`(?i)^SC`)},
	{"sales-tax", regexp.MustCompile(`(?i)^TAX`)},
	{"balance", regexp.MustCompile(`(?i)^BALANCE`)},
	{"auth-code", regexp.MustCompile(`(?i)^AID:`)},
	{"terminal-code", regexp.MustCompile(`(?i)^TC:`)},
	{"reference-number", regexp.MustCompile(`(?i)^REF#:`)},
	{"change-due", regexp.MustCompile(`(?i)^CHANGE`)},
	{"card-verification", regexp.MustCompile(`(?i)^VERIFIED`)},
	{"card-brand", regexp.MustCompile(`(?i)^MASTERCARD`)},
}

func isSkippable(line string) bool {
	for _, rule := range skipRules {
		if rule.re.MatchString(line) {
			return true
		}
	}
	return false
}

// multipackSuffix matches a trailing "<count>PK" token, e.g. "GREEK YOG 6PK".
var multipackSuffix = regexp.MustCompile(`(?i)^(.+?)\s+(\d+PK)$`)

// splitMultipack separates a trailing multipack token from an item-name
// candidate. The token becomes the unit field.
func splitMultipack(name string) (string, string) {
	if m := multipackSuffix.FindStringSubmatch(name); m != nil {
		return m[1], m[2]
	}
	return name, ""
}
