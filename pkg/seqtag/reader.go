package seqtag

import (
	"fmt"
	"strings"
)

// Sequence is the internal form of one token sequence: one position per
// input line, with the split fields, the extracted feature ids and, for
// training data, the gold label ids.
type Sequence struct {
	// Lines holds the raw records, one per position. For sequences stored
	// in the corpus these are always independently owned clones.
	Lines []string
	// Tokens holds the whitespace-split fields of each record, minus the
	// label column when one was extracted.
	Tokens [][]string
	// Labels holds gold label ids; nil for unlabeled input.
	Labels []int
	// Feats holds the interned state-feature ids of each position.
	Feats [][]int
}

// Len returns the number of positions in the sequence.
func (s *Sequence) Len() int {
	return len(s.Lines)
}

// Corpus is the model's accumulated training set: append-only during
// setup, read-only during training. MaxLen caches the longest sequence
// length for downstream buffer sizing.
type Corpus struct {
	Seqs   []*Sequence
	MaxLen int
}

// Reader converts an ordered line collection into an internal Sequence,
// extracting gold labels when labeled is set.
type Reader interface {
	ReadSequence(m *Model, lines []string, labeled bool) (*Sequence, error)
}

// DefaultReader reads whitespace-separated token records. When reading
// labeled data the last field of each record is the gold label.
type DefaultReader struct{}

// ReadSequence implements Reader.
func (DefaultReader) ReadSequence(m *Model, lines []string, labeled bool) (*Sequence, error) {
	seq := &Sequence{
		Lines:  lines,
		Tokens: make([][]string, len(lines)),
	}
	if labeled {
		seq.Labels = make([]int, len(lines))
	}
	for i, line := range lines {
		fields := strings.Fields(line)
		if labeled {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: expected token fields and a label, got %q", i+1, line)
			}
			seq.Labels[i] = m.labels.Intern(fields[len(fields)-1])
			fields = fields[:len(fields)-1]
		} else if m.cfg.ValidateInput && len(fields) == 0 {
			return nil, fmt.Errorf("line %d: empty token record %q", i+1, line)
		}
		seq.Tokens[i] = fields
	}

	// Only labeled data may grow the vocabulary; tagging resolves symbols
	// already seen and drops the rest, so the model reads as shared state
	// but is never written.
	seq.Feats = make([][]int, len(lines))
	for t := range lines {
		var feats []int
		add := func(sym string) {
			if labeled {
				feats = append(feats, m.obs.Intern(sym))
			} else if id, ok := m.obs.Lookup(sym); ok {
				feats = append(feats, id)
			}
		}
		for _, pat := range m.patterns {
			if pat.Scope == ScopeBigram {
				continue
			}
			add(pat.expand(seq.Tokens, t))
		}
		// Without templates, fall back to the surface form itself.
		if len(m.patterns) == 0 && len(seq.Tokens[t]) > 0 {
			add(seq.Tokens[t][0])
		}
		seq.Feats[t] = feats
	}
	return seq, nil
}

// AddTrainSequence converts one blank-line-free block of labeled text into
// an internal sequence and appends it to the model's corpus. The lines are
// always cloned on ingestion: the corpus outlives the call, so it never
// references the caller's buffer.
func (m *Model) AddTrainSequence(text string) error {
	lines := cloneLines(splitLines(text))
	seq, err := m.reader.ReadSequence(m, lines, true)
	if err != nil {
		return fmt.Errorf("could not read training sequence: %w", err)
	}
	m.corpus.Seqs = append(m.corpus.Seqs, seq)
	if seq.Len() > m.corpus.MaxLen {
		m.corpus.MaxLen = seq.Len()
	}
	return nil
}
