package seqtag

import "strings"

// splitLines splits text on newline boundaries into an ordered line
// collection. Empty lines contribute nothing, and a trailing carriage
// return is stripped from each line. The returned strings share storage
// with the input; callers that store them beyond the current call must
// clone them first (see cloneLines).
func splitLines(text string) []string {
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for len(text) > 0 {
		var line string
		if i := strings.IndexByte(text, '\n'); i < 0 {
			line, text = text, ""
		} else {
			line, text = text[:i], text[i+1:]
		}
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// cloneLines copies every line into independently owned storage. Anything
// that outlives the current call (the training corpus, compiled patterns)
// must hold cloned lines, never slices of the caller's input.
func cloneLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Clone(line)
	}
	return out
}

// rowOverhead is the per-row capacity estimate added on top of the input
// length: tab, newline and a short label.
const rowOverhead = 8

// annotationBuffer assembles the annotated output of the tagging pipeline.
// It starts from a capacity estimate derived from the input and grows by
// remaining-row amortization, so adversarially long labels cost a bounded
// number of reallocations instead of one per row.
type annotationBuffer struct {
	buf []byte
}

func newAnnotationBuffer(inputLen, rows int) *annotationBuffer {
	return &annotationBuffer{buf: make([]byte, 0, inputLen+rows*rowOverhead)}
}

// appendRow writes "<line>\t<label>\n". remaining is the number of rows
// still to be written, this one included; when capacity runs short the
// buffer grows by the row size multiplied by remaining.
func (a *annotationBuffer) appendRow(line, label string, remaining int) {
	need := len(line) + len(label) + 2
	if cap(a.buf)-len(a.buf) < need {
		if remaining < 1 {
			remaining = 1
		}
		grown := make([]byte, len(a.buf), cap(a.buf)+need*remaining)
		copy(grown, a.buf)
		a.buf = grown
	}
	a.buf = append(a.buf, line...)
	a.buf = append(a.buf, '\t')
	a.buf = append(a.buf, label...)
	a.buf = append(a.buf, '\n')
}

// String returns the assembled text as independently owned storage.
func (a *annotationBuffer) String() string {
	return string(a.buf)
}
