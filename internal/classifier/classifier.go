package classifier

import (
	"strings"

	"github.com/nao1215/sdksniff/internal/model"
)

// Classifier walks a normalized value tree and produces a FindingSet.
// It is stateless after construction and safe for concurrent use: every
// field is read-only once New returns, so one Classifier can serve a
// whole worker pool.
type Classifier struct {
	// rules is the compiled category table.
	rules []rule

	// junk holds lowercased values discarded before categorization.
	junk map[string]struct{}

	// nameKeys holds key names allowed to produce short name captures.
	nameKeys map[string]struct{}
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithExtraJunkWords appends user-supplied words to the junk stoplist.
// Matching is case-insensitive and exact.
func WithExtraJunkWords(words []string) Option {
	return func(c *Classifier) {
		for _, w := range words {
			c.junk[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
}

// New creates a Classifier with the built-in category table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:    defaultRules(),
		junk:     make(map[string]struct{}, len(defaultJunkWords)),
		nameKeys: make(map[string]struct{}, len(allowedNameKeys)),
	}
	for _, w := range defaultJunkWords {
		c.junk[w] = struct{}{}
	}
	for _, k := range allowedNameKeys {
		c.nameKeys[k] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify walks the value tree rooted at v and returns every finding.
// The key is the name the value originated under (empty for a whole
// decoded body); nested mapping keys are joined with dots as recursion
// descends, e.g. "user.address.city".
func (c *Classifier) Classify(key string, v model.Value) model.FindingSet {
	findings := model.NewFindingSet()
	c.walk(key, v, findings)
	return findings
}

// walk recurses through mappings and sequences, accumulating findings.
// Sequence members inherit the sequence's key: a list of phone numbers
// under "contacts" is classified as if each number sat under "contacts".
func (c *Classifier) walk(key string, v model.Value, findings model.FindingSet) {
	switch v.Kind() {
	case model.KindMapping:
		for _, childKey := range v.Keys() {
			child, _ := v.Get(childKey)
			c.walk(joinKey(key, childKey), child, findings)
		}
	case model.KindSequence:
		for _, item := range v.Items() {
			c.walk(key, item, findings)
		}
	case model.KindScalar:
		c.classifyScalar(key, v.Text(), findings)
	}
}

// classifyScalar applies every rule family to one leaf value.
func (c *Classifier) classifyScalar(key, raw string, findings model.FindingSet) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return
	}
	if _, junk := c.junk[strings.ToLower(value)]; junk {
		return
	}

	// Re-parse rule: a scalar that looks like a serialized object is
	// recursed into instead of being pattern-matched as text. SDKs
	// routinely double-encode payloads this way.
	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		if nested, err := model.FromJSON([]byte(value)); err == nil {
			c.walk(key, nested, findings)
			return
		}
	}

	valid, invalid := imeiCandidates(key, value)
	for _, num := range valid {
		findings.Add(model.CategoryIMEI, num)
	}
	for _, num := range invalid {
		findings.Add(model.CategoryIMEIFalsePositive, num)
	}

	target := key + ":" + value
	for _, r := range c.rules {
		m := r.re.FindStringSubmatch(target)
		if m == nil {
			continue
		}
		candidate := value
		if len(m) > 1 && m[1] != "" {
			candidate = m[1]
		}
		if len(r.excludeLeading) > 0 && hasExcludedLeadingWord(candidate, r.excludeLeading) {
			continue
		}
		// Name matches shorter than 2 characters are almost always regex
		// accidents (a stray capital letter) unless the key itself says
		// it carries a name.
		if r.tag == model.CategoryName && len(candidate) < 2 && !c.isNameKey(key) {
			continue
		}
		findings.Add(r.tag, candidate)
	}

	for _, num := range cardCandidates(value) {
		// A 15-digit value already claimed as an IMEI is not re-reported
		// as a card number.
		if findings.Has(model.CategoryIMEI, num) {
			continue
		}
		if !Luhn(num) {
			continue
		}
		if network := cardNetworkFor(num); network != "" {
			findings.Add(model.CategoryCreditCard, num+" ("+network+")")
		}
	}
}

// isNameKey reports whether the key's leaf segment is an explicit
// name-bearing key.
func (c *Classifier) isNameKey(key string) bool {
	leaf := key
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		leaf = key[idx+1:]
	}
	_, ok := c.nameKeys[strings.ToLower(leaf)]
	return ok
}

// joinKey appends a child key to the dot-joined path.
func joinKey(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// hasExcludedLeadingWord reports whether the candidate's first word is in
// the exclusion list. The comparison mirrors a word-boundary check: the
// leading alphanumeric run must equal the excluded word exactly.
func hasExcludedLeadingWord(candidate string, excluded []string) bool {
	end := 0
	for end < len(candidate) && isWordByte(candidate[end]) {
		end++
	}
	leading := strings.ToLower(candidate[:end])
	for _, word := range excluded {
		if leading == word {
			return true
		}
	}
	return false
}
