package seqtag

import "fmt"

// Label splits text into lines, decodes a label for every line and returns
// the input annotated as "<line>\t<label>\n" rows, in input order. With
// Config.NBest greater than one, the top-N candidate labelings are emitted
// one after another, each candidate contributing one row per input line.
//
// Each call is independent: the line collection and decoded scratch state
// live only for the duration of the call, and the returned string is
// independently owned by the caller.
func (m *Model) Label(text string) (string, error) {
	lines := splitLines(text)
	seq, err := m.reader.ReadSequence(m, lines, false)
	if err != nil {
		return "", fmt.Errorf("could not read input: %w", err)
	}

	n := m.cfg.NBest
	if n < 1 {
		n = 1
	}

	var paths [][]int
	if n == 1 {
		path, _, err := m.decoder.Tag(m, seq)
		if err != nil {
			return "", err
		}
		paths = [][]int{path}
	} else {
		paths, _, err = m.decoder.TagNBest(m, seq, n)
		if err != nil {
			return "", err
		}
	}

	T := seq.Len()
	out := newAnnotationBuffer(len(text), T*len(paths))
	for i, path := range paths {
		for t := 0; t < T; t++ {
			label, ok := m.labels.String(path[t])
			if !ok {
				return "", fmt.Errorf("decoder produced unknown label id %d", path[t])
			}
			// Rows left in the whole pass, later candidates included.
			out.appendRow(seq.Lines[t], label, (len(paths)-i)*T-t)
		}
	}
	return out.String(), nil
}
