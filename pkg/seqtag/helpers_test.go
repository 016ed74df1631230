package seqtag

import (
	"context"
	"testing"
)

// sinkLog records every message dispatched to a recording sink table,
// split by severity.
type sinkLog struct {
	fatal    []string
	fatalSys []string
	warning  []string
	info     []string
}

// recordingSinks returns a Sinks whose handlers only record; none of them
// terminate, so fatal paths surface as returned errors.
func recordingSinks() (*Sinks, *sinkLog) {
	log := &sinkLog{}
	return &Sinks{
		Fatal:    func(msg string) { log.fatal = append(log.fatal, msg) },
		FatalSys: func(msg string) { log.fatalSys = append(log.fatalSys, msg) },
		Warning:  func(msg string) { log.warning = append(log.warning, msg) },
		Info:     func(msg string) { log.info = append(log.info, msg) },
	}, log
}

// newTestModel builds a model with recording sinks and no patterns.
func newTestModel(t *testing.T, cfg *Config) (*Model, *sinkLog) {
	t.Helper()
	sinks, log := recordingSinks()
	m, err := New(cfg, "", WithSinks(sinks))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m, log
}

const testPatterns = "u00:%x[0,0]\nb00:%x[-1,0]/%x[0,0]\n"

var testCorpus = []string{
	"the D\ndog N\nbarks V",
	"a D\ncat N\nruns V",
}

// newTrainedModel builds a model from cfg, loads the default patterns,
// ingests the small test corpus and trains it.
func newTrainedModel(t *testing.T, cfg *Config) (*Model, *sinkLog) {
	t.Helper()
	m, log := newTestModel(t, cfg)
	if err := m.LoadPatterns(testPatterns); err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	for _, seq := range testCorpus {
		if err := m.AddTrainSequence(seq); err != nil {
			t.Fatalf("AddTrainSequence(%q) error = %v", seq, err)
		}
	}
	if err := m.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m, log
}
