package seqtag

import (
	"errors"
	"sort"
)

// Decoder assigns label ids to an internal sequence.
type Decoder interface {
	// Tag returns the single best label per position and the path score.
	Tag(m *Model, seq *Sequence) ([]int, float64, error)
	// TagNBest returns up to n candidate labelings, best first, with one
	// score per candidate.
	TagNBest(m *Model, seq *Sequence, n int) ([][]int, []float64, error)
}

// DefaultDecoder decodes with Viterbi over the model's emission and
// transition scores. For the maxent model type positions are independent
// and the decoder reduces to a per-position argmax.
type DefaultDecoder struct{}

// emitScore sums the emission weights of a position's features for label y.
// Features and labels interned after the last Sync score zero.
func emitScore(m *Model, seq *Sequence, t, y int) float64 {
	var score float64
	for _, f := range seq.Feats[t] {
		if f < len(m.weights.Emit) && y < len(m.weights.Emit[f]) {
			score += m.weights.Emit[f][y]
		}
	}
	return score
}

// transScore returns the transition weight from label p to label y. Labels
// interned after the last Sync score zero.
func transScore(m *Model, p, y int) float64 {
	if p >= len(m.weights.Trans) || y >= len(m.weights.Trans[p]) {
		return 0
	}
	return m.weights.Trans[p][y]
}

// Tag implements Decoder.
func (DefaultDecoder) Tag(m *Model, seq *Sequence) ([]int, float64, error) {
	nlbl := m.labels.Len()
	if nlbl == 0 {
		return nil, 0, errors.New("model has no labels")
	}
	T := seq.Len()
	path := make([]int, T)
	if T == 0 {
		return path, 0, nil
	}

	if m.typ == MaxEnt {
		var total float64
		for t := 0; t < T; t++ {
			best, bestScore := 0, emitScore(m, seq, t, 0)
			for y := 1; y < nlbl; y++ {
				if s := emitScore(m, seq, t, y); s > bestScore {
					best, bestScore = y, s
				}
			}
			path[t] = best
			total += bestScore
		}
		return path, total, nil
	}

	delta := make([][]float64, T)
	back := make([][]int, T)
	for t := range delta {
		delta[t] = make([]float64, nlbl)
		back[t] = make([]int, nlbl)
	}
	for y := 0; y < nlbl; y++ {
		delta[0][y] = emitScore(m, seq, 0, y)
	}
	for t := 1; t < T; t++ {
		for y := 0; y < nlbl; y++ {
			emit := emitScore(m, seq, t, y)
			bestPrev, bestScore := 0, delta[t-1][0]+transScore(m, 0, y)
			for p := 1; p < nlbl; p++ {
				if s := delta[t-1][p] + transScore(m, p, y); s > bestScore {
					bestPrev, bestScore = p, s
				}
			}
			delta[t][y] = bestScore + emit
			back[t][y] = bestPrev
		}
	}

	best, bestScore := 0, delta[T-1][0]
	for y := 1; y < nlbl; y++ {
		if delta[T-1][y] > bestScore {
			best, bestScore = y, delta[T-1][y]
		}
	}
	path[T-1] = best
	for t := T - 1; t > 0; t-- {
		path[t-1] = back[t][path[t]]
	}
	return path, bestScore, nil
}

// hyp is one partial labeling kept per state during N-best decoding: its
// score plus a back reference to the hypothesis it extends.
type hyp struct {
	score float64
	prev  int // previous state, -1 at t == 0
	rank  int // hypothesis index within the previous state
}

// TagNBest implements Decoder using hypothesis-list Viterbi: each state
// keeps its n best partial labelings instead of only the single best.
func (d DefaultDecoder) TagNBest(m *Model, seq *Sequence, n int) ([][]int, []float64, error) {
	if n <= 1 {
		path, score, err := d.Tag(m, seq)
		if err != nil {
			return nil, nil, err
		}
		return [][]int{path}, []float64{score}, nil
	}
	nlbl := m.labels.Len()
	if nlbl == 0 {
		return nil, nil, errors.New("model has no labels")
	}
	T := seq.Len()
	if T == 0 {
		return [][]int{{}}, []float64{0}, nil
	}

	hyps := make([][][]hyp, T)
	for t := range hyps {
		hyps[t] = make([][]hyp, nlbl)
	}
	for y := 0; y < nlbl; y++ {
		hyps[0][y] = []hyp{{score: emitScore(m, seq, 0, y), prev: -1}}
	}
	for t := 1; t < T; t++ {
		for y := 0; y < nlbl; y++ {
			emit := emitScore(m, seq, t, y)
			var cands []hyp
			for p := 0; p < nlbl; p++ {
				var trans float64
				if m.typ != MaxEnt {
					trans = transScore(m, p, y)
				}
				for k, h := range hyps[t-1][p] {
					cands = append(cands, hyp{score: h.score + trans + emit, prev: p, rank: k})
				}
			}
			sort.Slice(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
			if len(cands) > n {
				cands = cands[:n]
			}
			hyps[t][y] = cands
		}
	}

	// Gather the n best endpoints over all final states.
	type endpoint struct {
		score float64
		state int
		rank  int
	}
	var ends []endpoint
	for y := 0; y < nlbl; y++ {
		for k, h := range hyps[T-1][y] {
			ends = append(ends, endpoint{score: h.score, state: y, rank: k})
		}
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].score > ends[j].score })
	if len(ends) > n {
		ends = ends[:n]
	}

	paths := make([][]int, len(ends))
	scores := make([]float64, len(ends))
	for i, end := range ends {
		path := make([]int, T)
		state, rank := end.state, end.rank
		for t := T - 1; t >= 0; t-- {
			path[t] = state
			h := hyps[t][state][rank]
			state, rank = h.prev, h.rank
		}
		paths[i] = path
		scores[i] = end.score
	}
	return paths, scores, nil
}
