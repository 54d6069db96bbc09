package tracking

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCheckoutPattern matches links to the checkout provider.
const DefaultCheckoutPattern = `(?i)hotmart\.com|pay\.hotmart\.com`

// Matcher decides whether a link points at the checkout provider.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern, using DefaultCheckoutPattern when it is blank.
func NewMatcher(pattern string) (*Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultCheckoutPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("tracking: compile checkout pattern: %w", err)
	}
	return &Matcher{re: re}, nil
}

// MustMatcher is NewMatcher for patterns known to be valid.
func MustMatcher(pattern string) *Matcher {
	m, err := NewMatcher(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether href is a checkout link. An empty href never matches.
func (m *Matcher) Match(href string) bool {
	if m == nil || href == "" {
		return false
	}
	return m.re.MatchString(href)
}

// Pattern returns the source expression.
func (m *Matcher) Pattern() string {
	if m == nil {
		return ""
	}
	return m.re.String()
}
