package extract

import (
	"encoding/json"

	"github.com/rohmanhakim/sitecrawler/pkg/hashutil"
)

/*
Extraction rule schema

Each rule is independent and declares exactly one of css, regex, or
fixed_value; a rule with none of the three resolves to default_value (or
empty string if that is also unset).
*/

type Rule struct {
	FieldName    string  `json:"field_name"`
	CSS          string  `json:"css,omitempty"`
	Regex        string  `json:"regex,omitempty"`
	Attribute    string  `json:"attribute,omitempty"`
	FixedValue   *string `json:"fixed_value,omitempty"`
	DefaultValue *string `json:"default_value,omitempty"`
}

// RuleSet is an ordered extraction rule-set. Order matters only for the
// fingerprint: two rule-sets with the same rules in different orders
// fingerprint differently.
type RuleSet struct {
	Rules []Rule `json:"rules"`
}

// Fingerprint is a stable 32-bit hash over the canonical JSON encoding of
// the ordered rule list, compared against each record's parsed_hash to
// decide whether that record's derived fields are stale.
func (rs RuleSet) Fingerprint() uint32 {
	// json.Marshal on a slice of structs with stable field order gives a
	// deterministic encoding, which is all the fingerprint needs.
	encoded, err := json.Marshal(rs.Rules)
	if err != nil {
		// Marshal of a plain data struct cannot fail; if it somehow does,
		// fingerprint the empty rule-set rather than panic.
		encoded = []byte("[]")
	}
	return hashutil.Fingerprint32(encoded)
}

// Fields lists the field names this rule-set declares, in rule order.
func (rs RuleSet) Fields() []string {
	names := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		names[i] = r.FieldName
	}
	return names
}

// Result is the output of applying a RuleSet to one document: field name to
// either a scalar string (0 or 1 match) or a []string (2+ matches).
type Result map[string]any

// ContentDigest is the structural summary derived from the Markdown
// rendering of an HTML record.
type ContentDigest struct {
	HeadingCount   int `json:"heading_count"`
	WordCount      int `json:"word_count"`
	ParagraphCount int `json:"paragraph_count"`
}
