package seqtag

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// PatternScope classifies which part of the model a feature template feeds.
type PatternScope int

const (
	// ScopeUnigram templates produce state-dependent features.
	ScopeUnigram PatternScope = iota
	// ScopeBigram templates produce transition-dependent features.
	ScopeBigram
	// ScopeBoth templates produce both kinds.
	ScopeBoth
)

// Pattern is a compiled feature template together with its scope
// classification. The pattern list on a model is ordered and append-only.
type Pattern struct {
	// Source is the normalized template line the pattern was compiled from:
	// comment stripped, trailing space trimmed, selector lowercased.
	Source string
	// Scope is derived from the template's leading selector character.
	Scope PatternScope
	// Span is the widest token offset the template references.
	Span int

	items []patItem
}

// patItem is one piece of a compiled template: a literal prefix optionally
// followed by a %x[row,col] window reference.
type patItem struct {
	lit    string
	row    int
	col    int
	window bool
}

// PatternCompiler turns one normalized template line into a compiled
// Pattern. Implementations may retain the source string, which is why the
// loader hands them independently owned copies.
type PatternCompiler interface {
	Compile(src string) (*Pattern, error)
}

// DefaultCompiler compiles the %x[row,col] window grammar: a template is
// literal text interleaved with window references, where row is a signed
// token offset relative to the current position and col a field index.
type DefaultCompiler struct{}

// Compile implements PatternCompiler.
func (DefaultCompiler) Compile(src string) (*Pattern, error) {
	p := &Pattern{Source: src}
	rest := src
	for {
		i := strings.Index(rest, "%x[")
		if i < 0 {
			if rest != "" {
				p.items = append(p.items, patItem{lit: rest})
			}
			return p, nil
		}
		lit := rest[:i]
		rest = rest[i+len("%x["):]
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			return nil, fmt.Errorf("unterminated window in %q", src)
		}
		row, col, err := parseWindow(rest[:j])
		if err != nil {
			return nil, fmt.Errorf("bad window in %q: %w", src, err)
		}
		p.items = append(p.items, patItem{lit: lit, row: row, col: col, window: true})
		span := row
		if span < 0 {
			span = -span
		}
		if span > p.Span {
			p.Span = span
		}
		rest = rest[j+1:]
	}
}

func parseWindow(s string) (row, col int, err error) {
	lhs, rhs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New("expected row,col")
	}
	if row, err = strconv.Atoi(strings.TrimSpace(lhs)); err != nil {
		return 0, 0, fmt.Errorf("row: %w", err)
	}
	if col, err = strconv.Atoi(strings.TrimSpace(rhs)); err != nil {
		return 0, 0, fmt.Errorf("col: %w", err)
	}
	return row, col, nil
}

// expand renders the template at position t over the token grid. Window
// references outside the sequence produce boundary markers so positions
// near the edges still get distinct features.
func (p *Pattern) expand(toks [][]string, t int) string {
	var b strings.Builder
	for _, it := range p.items {
		b.WriteString(it.lit)
		if !it.window {
			continue
		}
		r := t + it.row
		switch {
		case r < 0:
			b.WriteString("_B-")
			b.WriteString(strconv.Itoa(-r))
		case r >= len(toks):
			b.WriteString("_B+")
			b.WriteString(strconv.Itoa(r - len(toks) + 1))
		default:
			if row := toks[r]; it.col >= 0 && it.col < len(row) {
				b.WriteString(row[it.col])
			}
		}
	}
	return b.String()
}

// PatternStats aggregates the derived counters of a model's pattern list.
// The counts stay consistent with the list contents at all times: a
// template scoped to both sides is counted once in Unigrams, once in
// Bigrams and once in Total.
type PatternStats struct {
	Unigrams int
	Bigrams  int
	Total    int
	MaxSpan  int
}

// LoadPatterns parses template lines from text and appends the compiled
// patterns to the model. For each line the first '#' introduces a comment;
// the line is truncated there and trailing whitespace is trimmed. Lines
// that become empty are skipped. The first remaining character selects the
// scope: 'u' for unigram, 'b' for bigram, '*' for both, case-insensitive.
// Any other selector is fatal and aborts the whole call; patterns compiled
// from earlier lines stay committed.
func (m *Model) LoadPatterns(text string) error {
	for _, line := range splitLines(text) {
		end := strings.IndexByte(line, '#')
		if end < 0 {
			end = len(line)
		}
		for end > 0 && isSpace(line[end-1]) {
			end--
		}
		if end == 0 {
			continue
		}

		// The compiler may retain the source, so it never sees a slice of
		// the caller's buffer.
		src := strings.Clone(line[:end])
		if sel := lowerByte(src[0]); sel != src[0] {
			src = string(sel) + src[1:]
		}

		pat, err := m.compiler.Compile(src)
		if err != nil {
			return m.sinks.fatalf("cannot compile pattern %q: %v", src, err)
		}
		switch src[0] {
		case 'u':
			pat.Scope = ScopeUnigram
			m.pstats.Unigrams++
		case 'b':
			pat.Scope = ScopeBigram
			m.pstats.Bigrams++
		case '*':
			pat.Scope = ScopeBoth
			m.pstats.Unigrams++
			m.pstats.Bigrams++
		default:
			return m.sinks.fatalf("unknown pattern type '%c'", src[0])
		}
		m.patterns = append(m.patterns, pat)
		m.pstats.Total++
		if pat.Span > m.pstats.MaxSpan {
			m.pstats.MaxSpan = pat.Span
		}
	}

	m.logger.Info("Patterns loaded",
		slog.Int("total", m.pstats.Total),
		slog.Int("unigrams", m.pstats.Unigrams),
		slog.Int("bigrams", m.pstats.Bigrams),
		slog.Int("max_span", m.pstats.MaxSpan),
	)
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r':
		return true
	}
	return false
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
