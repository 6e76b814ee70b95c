package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RuleError classifies a malformed rule (more than one of css/regex/
// fixed_value set) or a regex rule missing a capturing group. Both are
// configuration mistakes rather than runtime failures, so they are always
// fatal.
type RuleError struct {
	FieldName string
	Message   string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("extraction rule %q: %s", e.FieldName, e.Message)
}

// Validate checks every rule for configuration mistakes: more than one of
// css/regex/fixed_value set, an uncompilable regex, or a regex with no
// capturing group. These are fatal before a pass starts rather than
// per-record failures during it.
func (rs RuleSet) Validate() error {
	for _, rule := range rs.Rules {
		if rule.FieldName == "" {
			return &RuleError{FieldName: rule.FieldName, Message: "field_name is required"}
		}
		set := 0
		if rule.CSS != "" {
			set++
		}
		if rule.Regex != "" {
			set++
		}
		if rule.FixedValue != nil {
			set++
		}
		if set > 1 {
			return &RuleError{FieldName: rule.FieldName, Message: "only one of css, regex, fixed_value may be set"}
		}
		if rule.Regex != "" {
			re, err := regexp.Compile(rule.Regex)
			if err != nil {
				return &RuleError{FieldName: rule.FieldName, Message: fmt.Sprintf("invalid regex: %v", err)}
			}
			if re.NumSubexp() < 1 {
				return &RuleError{FieldName: rule.FieldName, Message: "regex rule requires a capturing group"}
			}
		}
	}
	return nil
}

// Apply evaluates every rule in rs against doc and cleanedHTML, returning one
// Result keyed by field_name. A rule resolves to:
//   - 0 matches  -> default_value, or "" if unset
//   - 1 match    -> a scalar string
//   - 2+ matches -> a []string, in document order
func Apply(rs RuleSet, doc *goquery.Document, cleanedHTML string) (Result, error) {
	result := make(Result, len(rs.Rules))
	for _, rule := range rs.Rules {
		values, err := evaluateRule(rule, doc, cleanedHTML)
		if err != nil {
			return nil, err
		}
		result[rule.FieldName] = collapse(values, rule.DefaultValue)
	}
	return result, nil
}

func collapse(values []string, defaultValue *string) any {
	switch len(values) {
	case 0:
		if defaultValue != nil {
			return *defaultValue
		}
		return ""
	case 1:
		return values[0]
	default:
		return values
	}
}

func evaluateRule(rule Rule, doc *goquery.Document, cleanedHTML string) ([]string, error) {
	set := 0
	if rule.CSS != "" {
		set++
	}
	if rule.Regex != "" {
		set++
	}
	if rule.FixedValue != nil {
		set++
	}
	if set > 1 {
		return nil, &RuleError{FieldName: rule.FieldName, Message: "only one of css, regex, fixed_value may be set"}
	}

	switch {
	case rule.FixedValue != nil:
		return []string{*rule.FixedValue}, nil
	case rule.CSS != "":
		return evaluateCSS(rule, doc), nil
	case rule.Regex != "":
		return evaluateRegex(rule, cleanedHTML)
	default:
		return nil, nil
	}
}

func evaluateCSS(rule Rule, doc *goquery.Document) []string {
	var values []string
	doc.Find(rule.CSS).Each(func(_ int, sel *goquery.Selection) {
		if rule.Attribute != "" {
			if v, ok := sel.Attr(rule.Attribute); ok {
				values = append(values, strings.TrimSpace(v))
			}
			return
		}
		values = append(values, strings.TrimSpace(sel.Text()))
	})
	return values
}

func evaluateRegex(rule Rule, cleanedHTML string) ([]string, error) {
	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return nil, &RuleError{FieldName: rule.FieldName, Message: fmt.Sprintf("invalid regex: %v", err)}
	}
	if re.NumSubexp() < 1 {
		return nil, &RuleError{FieldName: rule.FieldName, Message: "regex rule requires a capturing group"}
	}
	matches := re.FindAllStringSubmatch(cleanedHTML, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, m[1])
	}
	return values, nil
}
