package seqtag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
)

// snapshot is the serialized form of a model: the type tag, the normalized
// pattern sources, both vocabularies in id order and the trained
// parameters. Reloading a snapshot reproduces the pattern statistics and
// the tagging behavior of the saved model.
type snapshot struct {
	Type         string   `json:"model_type"`
	Patterns     []string `json:"patterns"`
	Labels       []string `json:"labels"`
	Observations []string `json:"observations"`
	Weights      *Weights `json:"weights"`
}

// Save serializes the model to w. The destination handle stays owned by
// the caller and is not closed.
func (m *Model) Save(w io.Writer) error {
	sources := make([]string, len(m.patterns))
	for i, pat := range m.patterns {
		sources[i] = pat.Source
	}
	snap := snapshot{
		Type:         m.typ.String(),
		Patterns:     sources,
		Labels:       m.labels.Symbols(),
		Observations: m.obs.Symbols(),
		Weights:      m.weights,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&snap); err != nil {
		return fmt.Errorf("could not encode model: %w", err)
	}
	return nil
}

// SaveFile writes the model snapshot to path atomically: the file either
// keeps its previous content or holds the complete new snapshot.
func (m *Model) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

// load restores model state from a snapshot. The snapshot's type tag wins
// over the configured one; a mismatch is reported as a warning.
func (m *Model) load(r io.Reader) error {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("could not decode model: %w", err)
	}

	typ, err := ParseModelType(snap.Type)
	if err != nil {
		return err
	}
	if typ != m.typ {
		m.sinks.warnf("model file is %q, configuration requested %q", snap.Type, m.cfg.ModelType)
		m.typ = typ
	}

	if len(snap.Patterns) > 0 {
		if err := m.LoadPatterns(strings.Join(snap.Patterns, "\n")); err != nil {
			return err
		}
	}
	for _, s := range snap.Labels {
		m.labels.Intern(s)
	}
	for _, s := range snap.Observations {
		m.obs.Intern(s)
	}
	if snap.Weights != nil {
		m.weights = snap.Weights
	}
	m.Sync()
	return nil
}
