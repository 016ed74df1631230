package seqtag

import (
	"strings"
	"testing"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "a\nb\nc", []string{"a", "b", "c"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"blank lines dropped", "a\n\n\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"empty", "", nil},
		{"only newlines", "\n\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("splitLines(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCloneLines(t *testing.T) {
	src := []string{"one", "two"}
	got := cloneLines(src)
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("cloneLines() = %v", got)
	}
	src[0] = "mutated"
	if got[0] != "one" {
		t.Errorf("clone shares the source slice")
	}
}

func TestAnnotationBufferGrowth(t *testing.T) {
	// Deliberately undersized estimate, then rows far beyond it.
	buf := newAnnotationBuffer(1, 1)
	longLabel := strings.Repeat("L", 500)

	var want strings.Builder
	rows := 20
	for i := 0; i < rows; i++ {
		buf.appendRow("line", longLabel, rows-i)
		want.WriteString("line\t")
		want.WriteString(longLabel)
		want.WriteString("\n")
	}
	if got := buf.String(); got != want.String() {
		t.Errorf("buffer content diverged: got %d bytes, want %d", len(got), want.Len())
	}
}

func TestAnnotationBufferNoRemaining(t *testing.T) {
	buf := newAnnotationBuffer(0, 0)
	buf.appendRow("a", "b", 0)
	if got := buf.String(); got != "a\tb\n" {
		t.Errorf("String() = %q, want %q", got, "a\tb\n")
	}
}
