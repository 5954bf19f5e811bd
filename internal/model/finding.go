package model

import (
	"encoding/json"
	"sort"

	"golang.org/x/crypto/sha3"
)

// Finding is a single classification result: one category tag attached to
// one captured value.
type Finding struct {
	// Category is the content category that matched.
	Category CategoryTag `json:"category"`

	// Value is the captured value (the pattern's capture group, or the
	// whole scalar when the pattern has no capture group).
	Value string `json:"value"`
}

// FindingSet maps category tags to the distinct values observed for each.
// Insertion order is irrelevant; values are sorted lexicographically at
// serialization time so that identical sets serialize identically. That
// determinism is what the per-domain deduplication invariant rests on.
type FindingSet map[CategoryTag]map[string]struct{}

// NewFindingSet returns an empty FindingSet.
func NewFindingSet() FindingSet {
	return make(FindingSet)
}

// Add records a value under the given category. Duplicate values are
// collapsed.
func (fs FindingSet) Add(category CategoryTag, value string) {
	values, ok := fs[category]
	if !ok {
		values = make(map[string]struct{})
		fs[category] = values
	}
	values[value] = struct{}{}
}

// Has reports whether the given value was recorded under the category.
func (fs FindingSet) Has(category CategoryTag, value string) bool {
	values, ok := fs[category]
	if !ok {
		return false
	}
	_, ok = values[value]
	return ok
}

// Merge folds every finding from other into the receiver.
func (fs FindingSet) Merge(other FindingSet) {
	for category, values := range other {
		for value := range values {
			fs.Add(category, value)
		}
	}
}

// Empty reports whether the set contains no findings.
func (fs FindingSet) Empty() bool {
	return len(fs) == 0
}

// Categories returns the category tags present in the set, sorted.
func (fs FindingSet) Categories() []CategoryTag {
	tags := make([]CategoryTag, 0, len(fs))
	for tag := range fs {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Values returns the sorted distinct values recorded under a category.
func (fs FindingSet) Values(category CategoryTag) []string {
	values := make([]string, 0, len(fs[category]))
	for value := range fs[category] {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// Findings flattens the set into individual findings, ordered by category
// and then by value.
func (fs FindingSet) Findings() []Finding {
	findings := make([]Finding, 0)
	for _, tag := range fs.Categories() {
		for _, value := range fs.Values(tag) {
			findings = append(findings, Finding{Category: tag, Value: value})
		}
	}
	return findings
}

// MarshalJSON serializes the set as {category: [sorted distinct values]}.
// encoding/json emits map keys in sorted order, so the output is fully
// canonical: two sets with the same content produce identical bytes.
func (fs FindingSet) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(fs))
	for tag := range fs {
		out[string(tag)] = fs.Values(tag)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the canonical {category: [values]} form.
func (fs *FindingSet) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := NewFindingSet()
	for tag, values := range raw {
		for _, value := range values {
			set.Add(CategoryTag(tag), value)
		}
	}
	*fs = set
	return nil
}

// Fingerprint returns a content digest of the canonical serialization.
// Two sets have equal fingerprints exactly when their serialized content
// is bit-identical, which is the deduplication criterion for log entries.
func (fs FindingSet) Fingerprint() [32]byte {
	data, err := fs.MarshalJSON()
	if err != nil {
		// MarshalJSON over plain strings cannot fail; an empty digest
		// would silently break deduplication, so treat this as fatal.
		panic("model: finding set marshal failed: " + err.Error())
	}
	return sha3.Sum256(data)
}
