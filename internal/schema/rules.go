package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Validation is the wire form of a field's custom constraints as stored on
// the field definition. Rules() compiles it into the closed rule variants.
type Validation struct {
	Min     *float64      `json:"min,omitempty"`
	Max     *float64      `json:"max,omitempty"`
	Pattern string        `json:"pattern,omitempty"`
	Enum    []interface{} `json:"enum,omitempty"`
}

// Rule is a compiled custom constraint. The interface is sealed: the only
// implementations are MinMax, Pattern and Enum.
type Rule interface {
	// Check verifies a type-validated value and returns a human-readable
	// reason on violation.
	Check(value interface{}) error
	rule()
}

// MinMax bounds a numeric value, or the length of a string value.
type MinMax struct {
	Min *float64
	Max *float64
}

func (MinMax) rule() {}

func (r MinMax) Check(value interface{}) error {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case string:
		n = float64(len(v))
	default:
		return fmt.Errorf("min/max does not apply to %T", value)
	}

	if r.Min != nil && n < *r.Min {
		return fmt.Errorf("must be at least %v", *r.Min)
	}
	if r.Max != nil && n > *r.Max {
		return fmt.Errorf("must be at most %v", *r.Max)
	}
	return nil
}

// Pattern matches a string value against a regular expression.
type Pattern struct {
	re *regexp.Regexp
}

func (Pattern) rule() {}

func (r Pattern) Check(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("pattern does not apply to %T", value)
	}
	if !r.re.MatchString(s) {
		return fmt.Errorf("must match pattern %q", r.re.String())
	}
	return nil
}

// Enum restricts a value to a fixed set of allowed values. Membership is
// decided by canonical JSON equality so that numeric representations compare
// equal regardless of how the payload was decoded.
type Enum struct {
	Allowed []interface{}
}

func (Enum) rule() {}

func (r Enum) Check(value interface{}) error {
	got, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("value is not comparable: %v", err)
	}
	for _, allowed := range r.Allowed {
		want, err := json.Marshal(allowed)
		if err != nil {
			continue
		}
		if string(got) == string(want) {
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", mustMarshal(r.Allowed))
}

// Rules compiles the wire form into the rule variants. An invalid pattern is
// a schema-definition-time error, not a document-time error.
func (v *Validation) Rules() ([]Rule, error) {
	if v == nil {
		return nil, nil
	}

	var rules []Rule
	if v.Min != nil || v.Max != nil {
		rules = append(rules, MinMax{Min: v.Min, Max: v.Max})
	}
	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %v", v.Pattern, err)
		}
		rules = append(rules, Pattern{re: re})
	}
	if len(v.Enum) > 0 {
		rules = append(rules, Enum{Allowed: v.Enum})
	}

	return rules, nil
}

func mustMarshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
