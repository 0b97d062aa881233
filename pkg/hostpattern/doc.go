// Package hostpattern compiles host-name templates into matchers that extract
// a tenant identifier from a request host.
//
// A template is a dot-separated list of segments. Each segment is one of:
//
//   - a literal (matched case-insensitively),
//   - "?" which matches exactly one arbitrary segment,
//   - "*" which matches zero or more segments (allowed once per template),
//   - a segment containing the tenant token "__tenant__", which captures the
//     identifier. Literal text may surround the token inside its segment.
//
// The template "__tenant__" on its own captures the whole host.
//
// # Usage
//
//	m, err := hostpattern.Compile("__tenant__.example.com")
//	if err != nil {
//		return err
//	}
//	id, ok := m.Match("acme.example.com") // "acme", true
//
// Wildcards must occupy an entire segment: "a*.example.com" and
// "?x.__tenant__.com" are rejected with ErrInvalidTemplate.
//
// # Time budget
//
// Matching runs with a per-call timeout (DefaultMatchTimeout unless changed
// with WithTimeout). A match that exceeds the budget is reported as no match.
package hostpattern
