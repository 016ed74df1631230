package seqtag

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ModelType selects the family of sequence model.
type ModelType int

const (
	// MaxEnt is a maximum-entropy model: positions are labeled
	// independently, without transition scores.
	MaxEnt ModelType = iota
	// MEMM is a maximum-entropy Markov model.
	MEMM
	// CRF is a conditional random field.
	CRF
)

// ParseModelType resolves a model type name from the fixed set
// "maxent", "memm", "crf".
func ParseModelType(name string) (ModelType, error) {
	switch name {
	case "maxent":
		return MaxEnt, nil
	case "memm":
		return MEMM, nil
	case "crf":
		return CRF, nil
	}
	return 0, fmt.Errorf("unknown model type %q", name)
}

func (t ModelType) String() string {
	switch t {
	case MaxEnt:
		return "maxent"
	case MEMM:
		return "memm"
	case CRF:
		return "crf"
	}
	return "unknown"
}

// Weights holds the trained parameters of the linear model: emission
// scores indexed by [feature][label] and transition scores indexed by
// [previous label][label]. Sync keeps the shapes in step with the symbol
// tables.
type Weights struct {
	Emit  [][]float64 `json:"emit"`
	Trans [][]float64 `json:"trans"`
}

// Model is the facade over the sequence-labeling engine. It is mutated in
// place by pattern loading, corpus building and training; concurrent use
// from multiple goroutines must be serialized by the caller.
type Model struct {
	cfg *Config
	typ ModelType

	sinks  *Sinks
	logger *slog.Logger

	compiler  PatternCompiler
	reader    Reader
	decoder   Decoder
	optimizer Optimizer

	patterns []*Pattern
	pstats   PatternStats

	labels *SymTab
	obs    *SymTab

	corpus  Corpus
	weights *Weights
}

// Option configures a Model during construction.
type Option func(*Model)

// WithSinks installs a replacement report-handler table.
func WithSinks(s *Sinks) Option {
	return func(m *Model) {
		if s != nil {
			m.sinks = s
		}
	}
}

// WithCompiler installs a replacement pattern compiler.
func WithCompiler(c PatternCompiler) Option {
	return func(m *Model) {
		if c != nil {
			m.compiler = c
		}
	}
}

// WithReader installs a replacement sequence reader.
func WithReader(r Reader) Option {
	return func(m *Model) {
		if r != nil {
			m.reader = r
		}
	}
}

// WithDecoder installs a replacement decoder.
func WithDecoder(d Decoder) Option {
	return func(m *Model) {
		if d != nil {
			m.decoder = d
		}
	}
}

// WithOptimizer installs a replacement training optimizer.
func WithOptimizer(o Optimizer) Option {
	return func(m *Model) {
		if o != nil {
			m.optimizer = o
		}
	}
}

// New constructs a model from cfg. The model type name is validated once
// here and never mutated afterwards; an unknown name is fatal and leaves no
// partial pattern or corpus state behind. If patterns is non-empty it is
// loaded immediately. The training corpus starts empty.
func New(cfg *Config, patterns string, opts ...Option) (*Model, error) {
	m := &Model{
		cfg:       cfg,
		sinks:     DefaultSinks(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		compiler:  DefaultCompiler{},
		reader:    DefaultReader{},
		decoder:   DefaultDecoder{},
		optimizer: DefaultOptimizer{},
		labels:    NewSymTab(),
		obs:       NewSymTab(),
		weights:   &Weights{},
	}
	for _, opt := range opts {
		opt(m)
	}

	typ, err := ParseModelType(cfg.ModelType)
	if err != nil {
		return nil, m.sinks.fatalf("unknown model type %q", cfg.ModelType)
	}
	m.typ = typ

	if patterns != "" {
		if err := m.LoadPatterns(patterns); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load constructs a model with no patterns and restores its state from the
// snapshot at path. Failure to open the file is fatal-with-system-error.
func Load(path string, cfg *Config, opts ...Option) (*Model, error) {
	m, err := New(cfg, "", opts...)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, m.sinks.syserrf(err, "cannot open input model file: %s", path)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	if err := m.load(file); err != nil {
		return nil, fmt.Errorf("could not load model %s: %w", path, err)
	}
	return m, nil
}

// LoadReader is Load for an already-open source. The reader is not closed.
func LoadReader(r io.Reader, cfg *Config, opts ...Option) (*Model, error) {
	m, err := New(cfg, "", opts...)
	if err != nil {
		return nil, err
	}
	if err := m.load(r); err != nil {
		return nil, fmt.Errorf("could not load model: %w", err)
	}
	return m, nil
}

// SetLogger sets the logger for the model's operational logging. By
// default all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Sync finalizes the model structure, sizing the parameter matrices to the
// current feature and label inventories while preserving trained values.
// It must run after the pattern set and corpus are complete and before any
// training or decoding touches the weights.
func (m *Model) Sync() {
	nlbl := m.labels.Len()
	nobs := m.obs.Len()

	for len(m.weights.Emit) < nobs {
		m.weights.Emit = append(m.weights.Emit, make([]float64, nlbl))
	}
	for i, row := range m.weights.Emit {
		if len(row) < nlbl {
			grown := make([]float64, nlbl)
			copy(grown, row)
			m.weights.Emit[i] = grown
		}
	}
	for len(m.weights.Trans) < nlbl {
		m.weights.Trans = append(m.weights.Trans, make([]float64, nlbl))
	}
	for i, row := range m.weights.Trans {
		if len(row) < nlbl {
			grown := make([]float64, nlbl)
			copy(grown, row)
			m.weights.Trans[i] = grown
		}
	}
}

// Type returns the model's type tag.
func (m *Model) Type() ModelType {
	return m.typ
}

// Config returns the configuration the model was constructed from.
func (m *Model) Config() *Config {
	return m.cfg
}

// PatternStats returns the derived counters of the pattern list.
func (m *Model) PatternStats() PatternStats {
	return m.pstats
}

// Labels returns the model's label symbol table.
func (m *Model) Labels() *SymTab {
	return m.labels
}

// CorpusLen returns the number of accumulated training sequences.
func (m *Model) CorpusLen() int {
	return len(m.corpus.Seqs)
}

// CorpusMaxLen returns the length of the longest training sequence.
func (m *Model) CorpusMaxLen() int {
	return m.corpus.MaxLen
}

// Close releases the model's corpus, pattern list, symbol tables and
// parameters. The model must not be used afterwards.
func (m *Model) Close() {
	m.patterns = nil
	m.pstats = PatternStats{}
	m.corpus = Corpus{}
	m.labels = nil
	m.obs = nil
	m.weights = nil
}
