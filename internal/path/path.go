// Package path resolves dot- and bracket-notation addresses into the value
// tree. "a.b[0].c", "a.b.0.c" and `a["b"][0].c` all name the same location.
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a canonical segment list. The zero value addresses the root.
// Segments that look like non-negative integers act as sequence indices when
// the container they select from is an Array.
type Path []string

// SyntaxError reports a malformed path string.
type SyntaxError struct {
	Input  string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid path %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

// Parse resolves a path string into segments. The empty string is the root.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	const (
		segmentStart = iota // at input start or right after "."
		inKey               // reading a bare key
		afterBracket        // right after "]"
	)

	var (
		segs  Path
		cur   strings.Builder
		state = segmentStart
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case segmentStart:
			switch c {
			case '.':
				return nil, &SyntaxError{Input: s, Offset: i, Reason: "empty segment"}
			case ']':
				return nil, &SyntaxError{Input: s, Offset: i, Reason: "unexpected ]"}
			case '[':
				seg, end, err := parseBracket(s, i)
				if err != nil {
					return nil, err
				}
				segs = append(segs, seg)
				i, state = end, afterBracket
			default:
				cur.WriteByte(c)
				state = inKey
			}
		case inKey:
			switch c {
			case '.':
				segs = append(segs, cur.String())
				cur.Reset()
				state = segmentStart
			case '[':
				segs = append(segs, cur.String())
				cur.Reset()
				seg, end, err := parseBracket(s, i)
				if err != nil {
					return nil, err
				}
				segs = append(segs, seg)
				i, state = end, afterBracket
			case ']':
				return nil, &SyntaxError{Input: s, Offset: i, Reason: "unexpected ]"}
			default:
				cur.WriteByte(c)
			}
		case afterBracket:
			switch c {
			case '.':
				state = segmentStart
			case '[':
				seg, end, err := parseBracket(s, i)
				if err != nil {
					return nil, err
				}
				segs = append(segs, seg)
				i = end
			default:
				return nil, &SyntaxError{Input: s, Offset: i, Reason: "expected . or [ after ]"}
			}
		}
	}

	switch state {
	case segmentStart:
		return nil, &SyntaxError{Input: s, Offset: len(s), Reason: "trailing ."}
	case inKey:
		segs = append(segs, cur.String())
	}
	return segs, nil
}

// parseBracket reads the segment opened at s[open] == '['. It returns the
// segment and the index of the closing bracket.
func parseBracket(s string, open int) (string, int, error) {
	i := open + 1
	if i >= len(s) {
		return "", 0, &SyntaxError{Input: s, Offset: open, Reason: "unclosed ["}
	}

	if q := s[i]; q == '"' || q == '\'' {
		var b strings.Builder
		for i++; i < len(s); i++ {
			c := s[i]
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
				continue
			}
			if c == q {
				if i+1 >= len(s) || s[i+1] != ']' {
					return "", 0, &SyntaxError{Input: s, Offset: i + 1, Reason: "expected ] after quoted key"}
				}
				return b.String(), i + 1, nil
			}
			b.WriteByte(c)
		}
		return "", 0, &SyntaxError{Input: s, Offset: open, Reason: "unterminated quoted key"}
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return "", 0, &SyntaxError{Input: s, Offset: open, Reason: "unclosed ["}
	}
	seg := strings.TrimSpace(s[i : i+end])
	if seg == "" {
		return "", 0, &SyntaxError{Input: s, Offset: open, Reason: "empty brackets"}
	}
	return seg, i + end, nil
}

// MustParse is Parse for constant paths. It panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Canonical returns the canonical dot form of s.
func Canonical(s string) (string, error) {
	p, err := Parse(s)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// Index reports whether seg is a sequence index ("0", "12"; not "01" or "-1").
func Index(seg string) (int, bool) {
	if seg == "" || len(seg) > 1 && seg[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// Key returns a copy of p extended with an object key.
func (p Path) Key(k string) Path {
	return p.with(k)
}

// Index returns a copy of p extended with a sequence index.
func (p Path) Index(i int) Path {
	return p.with(strconv.Itoa(i))
}

// Join returns a copy of p extended with other's segments.
func (p Path) Join(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

func (p Path) with(seg string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// IsRoot reports whether p addresses the whole tree.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns p without its last segment. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[: len(p)-1 : len(p)-1]
}

// Last returns the final segment, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// HasIndex reports whether any segment is a sequence index.
func (p Path) HasIndex() bool {
	for _, seg := range p {
		if _, ok := Index(seg); ok {
			return true
		}
	}
	return false
}

// String renders the canonical dot form: "a.b.0.c". Keys that cannot be
// written bare are quoted in brackets: `a["x.y"]`.
func (p Path) String() string {
	return p.render(false)
}

// Bracket renders indices in bracket form: "a.b[0].c".
func (p Path) Bracket() string {
	return p.render(true)
}

// Variants returns the distinct textual forms subscribers may use for p:
// the dot form first, then the bracket form when it differs.
func (p Path) Variants() []string {
	dot := p.String()
	if br := p.Bracket(); br != dot {
		return []string{dot, br}
	}
	return []string{dot}
}

func (p Path) render(bracketIndices bool) string {
	var b strings.Builder
	for i, seg := range p {
		_, isIdx := Index(seg)
		switch {
		case isIdx && bracketIndices:
			b.WriteByte('[')
			b.WriteString(seg)
			b.WriteByte(']')
		case needsQuote(seg):
			b.WriteString(`["`)
			b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(seg))
			b.WriteString(`"]`)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg)
		}
	}
	return b.String()
}

func needsQuote(seg string) bool {
	return seg == "" || strings.ContainsAny(seg, `.[]"'\`) || strings.TrimSpace(seg) != seg
}
