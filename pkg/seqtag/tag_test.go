package seqtag

import (
	"context"
	"strings"
	"testing"
)

func TestLabelSingleBest(t *testing.T) {
	m, _ := newTrainedModel(t, DefaultConfig())

	input := "the\ndog\nbarks"
	out, err := m.Label(input)
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d output lines, want 3: %q", len(lines), out)
	}
	for i, orig := range []string{"the", "dog", "barks"} {
		field, _, ok := strings.Cut(lines[i], "\t")
		if !ok {
			t.Fatalf("line %d has no tab: %q", i, lines[i])
		}
		if field != orig {
			t.Errorf("line %d = %q, want original line %q first", i, field, orig)
		}
	}
	if out != "the\tD\ndog\tN\nbarks\tV\n" {
		t.Errorf("Label() = %q", out)
	}
}

func TestLabelStateless(t *testing.T) {
	m, _ := newTrainedModel(t, DefaultConfig())

	first, err := m.Label("a\ncat\nruns")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	second, err := m.Label("a\ncat\nruns")
	if err != nil {
		t.Fatalf("second Label() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated calls diverged: %q vs %q", first, second)
	}
}

func TestLabelNBest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NBest = 2
	m, _ := newTrainedModel(t, cfg)

	out, err := m.Label("the\ndog\nbarks")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d output lines, want 2 candidates x 3 positions: %q", len(lines), out)
	}
	// The first candidate is the single best path.
	if got := strings.Join(lines[:3], "\n") + "\n"; got != "the\tD\ndog\tN\nbarks\tV\n" {
		t.Errorf("first candidate = %q", got)
	}
	// Every row keeps the original line order within its candidate.
	for i, orig := range []string{"the", "dog", "barks"} {
		for _, row := range []string{lines[i], lines[i+3]} {
			if !strings.HasPrefix(row, orig+"\t") {
				t.Errorf("row %q does not start with %q", row, orig)
			}
		}
	}
}

func TestLabelAdversarialLabelLengths(t *testing.T) {
	long1 := strings.Repeat("VERYLONGLABEL", 40) + "1"
	long2 := strings.Repeat("VERYLONGLABEL", 40) + "2"

	m, _ := newTestModel(t, DefaultConfig())
	if err := m.LoadPatterns("u00:%x[0,0]"); err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	if err := m.AddTrainSequence("x " + long1 + "\ny " + long2); err != nil {
		t.Fatalf("AddTrainSequence() error = %v", err)
	}
	if err := m.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	out, err := m.Label("x\ny\nx\ny")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	want := "x\t" + long1 + "\ny\t" + long2 + "\nx\t" + long1 + "\ny\t" + long2 + "\n"
	if out != want {
		t.Errorf("annotated output diverged under long labels: got %d bytes, want %d", len(out), len(want))
	}
}

func TestLabelNBestAdversarialLabelLengths(t *testing.T) {
	long1 := strings.Repeat("VERYLONGLABEL", 40) + "1"
	long2 := strings.Repeat("VERYLONGLABEL", 40) + "2"

	cfg := DefaultConfig()
	cfg.NBest = 2
	m, _ := newTestModel(t, cfg)
	if err := m.LoadPatterns("u00:%x[0,0]"); err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	if err := m.AddTrainSequence("x " + long1 + "\ny " + long2); err != nil {
		t.Fatalf("AddTrainSequence() error = %v", err)
	}
	if err := m.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	out, err := m.Label("x\ny")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d output lines, want 2 candidates x 2 positions: %q len %d", len(lines), out, len(out))
	}
	if lines[0] != "x\t"+long1 || lines[1] != "y\t"+long2 {
		t.Errorf("first candidate diverged under long labels: %q / %q", lines[0], lines[1])
	}
	for i, row := range lines {
		tok, label, ok := strings.Cut(row, "\t")
		if !ok || (tok != "x" && tok != "y") || (label != long1 && label != long2) {
			t.Errorf("row %d malformed under long labels: %q", i, row)
		}
	}
}

func TestLabelBeforeTraining(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())
	if err := m.LoadPatterns(testPatterns); err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	if err := m.AddTrainSequence(testCorpus[0]); err != nil {
		t.Fatalf("AddTrainSequence() error = %v", err)
	}

	// Labels exist but the weights were never allocated; every score is
	// zero and decoding still has to produce a well-formed answer.
	out, err := m.Label("the\ndog")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d output lines, want 2: %q", len(lines), out)
	}
	for i, orig := range []string{"the", "dog"} {
		if !strings.HasPrefix(lines[i], orig+"\t") {
			t.Errorf("row %q does not start with %q", lines[i], orig)
		}
	}
}

func TestLabelAfterNewTrainingLabel(t *testing.T) {
	m, _ := newTrainedModel(t, DefaultConfig())

	// A fresh gold label widens the label set past the trained weight
	// rows; the untrained label scores zero and the old decoding holds.
	if err := m.AddTrainSequence("zzz Z"); err != nil {
		t.Fatalf("AddTrainSequence() error = %v", err)
	}
	out, err := m.Label("the\ndog\nbarks")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if out != "the\tD\ndog\tN\nbarks\tV\n" {
		t.Errorf("Label() = %q", out)
	}
}

func TestLabelKeepsVocabularyFixed(t *testing.T) {
	m, _ := newTrainedModel(t, DefaultConfig())

	before := m.obs.Len()
	if _, err := m.Label("quantum\nflux\ncapacitor"); err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if got := m.obs.Len(); got != before {
		t.Errorf("observation table grew from %d to %d during tagging", before, got)
	}
}

func TestLabelUntrainedModel(t *testing.T) {
	m, _ := newTestModel(t, DefaultConfig())
	if _, err := m.Label("the\ndog"); err == nil {
		t.Error("Label() expected error for a model with no labels")
	}
}
