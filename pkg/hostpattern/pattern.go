package hostpattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	// TenantToken is the placeholder that marks the identifier segment.
	TenantToken = "__tenant__"

	// DefaultMatchTimeout bounds a single Match call.
	DefaultMatchTimeout = 100 * time.Millisecond

	identifierGroup = "identifier"

	singleSegment   = `[^\.]+`
	leadingSegments = `([^\.]+\.)*`
	trailingSegment = `(\.[^\.]+)*`
)

// Matcher extracts a tenant identifier from a host. It is safe for concurrent use.
type Matcher struct {
	template string
	re       *regexp2.Regexp
}

// Option configures compilation.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout overrides the per-match time budget. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Compile validates the template and builds a matcher for it.
func Compile(template string, opts ...Option) (*Matcher, error) {
	o := options{timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	pattern, err := translate(template)
	if err != nil {
		return nil, errors.Join(ErrInvalidTemplate, err)
	}

	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.ExplicitCapture)
	if err != nil {
		return nil, errors.Join(ErrInvalidTemplate, err)
	}
	re.MatchTimeout = o.timeout

	return &Matcher{template: template, re: re}, nil
}

// MustCompile is like Compile but panics on an invalid template.
func MustCompile(template string, opts ...Option) *Matcher {
	m, err := Compile(template, opts...)
	if err != nil {
		panic(fmt.Sprintf("hostpattern: %q: %v", template, err))
	}
	return m
}

// Match returns the identifier captured from host.
// A timeout or a non-matching host yields "", false.
func (m *Matcher) Match(host string) (string, bool) {
	if host == "" {
		return "", false
	}

	match, err := m.re.FindStringMatch(host)
	if err != nil || match == nil {
		return "", false
	}

	group := match.GroupByName(identifierGroup)
	if group == nil || group.Length == 0 {
		return "", false
	}
	return group.String(), true
}

// Template returns the source template.
func (m *Matcher) Template() string {
	return m.template
}

// String returns the compiled regular expression.
func (m *Matcher) String() string {
	return m.re.String()
}

// translate converts a template into an anchored regular expression.
func translate(template string) (string, error) {
	if template == TenantToken {
		return `\A(?<` + identifierGroup + `>.+)\z`, nil
	}

	template = strings.TrimSpace(template)
	if template == "" {
		return "", ErrEmptyTemplate
	}
	if strings.Count(template, "*") > 1 {
		return "", ErrMultipleWildcards
	}
	if err := checkWholeSegment(template, '*'); err != nil {
		return "", err
	}
	if err := checkWholeSegment(template, '?'); err != nil {
		return "", err
	}

	switch strings.Count(template, TenantToken) {
	case 0:
		return "", ErrMissingTenantToken
	case 1:
	default:
		return "", ErrDuplicateTenantToken
	}

	segments := strings.Split(template, ".")
	last := len(segments) - 1

	var b strings.Builder
	b.WriteString(`\A`)
	needSep := false
	for i, seg := range segments {
		if seg == "*" {
			if i == last && i > 0 {
				b.WriteString(trailingSegment)
			} else {
				if needSep {
					b.WriteString(`\.`)
				}
				b.WriteString(leadingSegments)
				needSep = false
			}
			continue
		}

		if needSep {
			b.WriteString(`\.`)
		}
		b.WriteString(segmentPattern(seg))
		needSep = true
	}
	b.WriteString(`\z`)

	return b.String(), nil
}

func segmentPattern(seg string) string {
	if seg == "?" {
		return singleSegment
	}
	before, after, found := strings.Cut(seg, TenantToken)
	if !found {
		return regexp2.Escape(seg)
	}
	return regexp2.Escape(before) + `(?<` + identifierGroup + `>` + singleSegment + `)` + regexp2.Escape(after)
}

// checkWholeSegment reports wildcards that share a segment with other characters.
func checkWholeSegment(template string, wildcard byte) error {
	for i := 0; i < len(template); i++ {
		if template[i] != wildcard {
			continue
		}
		if i > 0 && template[i-1] != '.' {
			return fmt.Errorf("%w: %q at position %d", ErrPartialWildcard, wildcard, i)
		}
		if i+1 < len(template) && template[i+1] != '.' {
			return fmt.Errorf("%w: %q at position %d", ErrPartialWildcard, wildcard, i)
		}
	}
	return nil
}
