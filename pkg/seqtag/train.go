package seqtag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Algorithm names a training method from the fixed, closed registry.
type Algorithm int

const (
	AlgoLBFGS Algorithm = iota
	AlgoSGDL1
	AlgoBCD
	AlgoRprop
	AlgoRpropPlus
	AlgoRpropMinus
	AlgoAuto
)

// ParseAlgorithm resolves an algorithm name against the registry.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "l-bfgs":
		return AlgoLBFGS, nil
	case "sgd-l1":
		return AlgoSGDL1, nil
	case "bcd":
		return AlgoBCD, nil
	case "rprop":
		return AlgoRprop, nil
	case "rprop+":
		return AlgoRpropPlus, nil
	case "rprop-":
		return AlgoRpropMinus, nil
	case "auto":
		return AlgoAuto, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q", name)
}

func (a Algorithm) String() string {
	switch a {
	case AlgoLBFGS:
		return "l-bfgs"
	case AlgoSGDL1:
		return "sgd-l1"
	case AlgoBCD:
		return "bcd"
	case AlgoRprop:
		return "rprop"
	case AlgoRpropPlus:
		return "rprop+"
	case AlgoRpropMinus:
		return "rprop-"
	case AlgoAuto:
		return "auto"
	}
	return "unknown"
}

// Optimizer fits model parameters for one concrete algorithm. maxIter caps
// the iteration count for this call only; implementations must poll ctx
// between iterations and return its error when cancelled.
type Optimizer interface {
	Optimize(ctx context.Context, m *Model, algo Algorithm, maxIter int) error
}

// autoWarmIter is the fixed iteration budget of the auto policy's first
// phase.
const autoWarmIter = 3

// Train resolves the configured algorithm name and fits the model on the
// accumulated corpus. The model structure is synced first; it depends on
// the pattern set and corpus being complete. Cancellation is cooperative
// through ctx, checked between iterations.
//
// The "auto" algorithm is a two-phase sequence: a short sgd-l1 run
// produces a sparsity-biased warm start, then l-bfgs runs to convergence
// from those parameters with the configured iteration budget. The warm
// start budget is passed per call, so Config.MaxIter is never touched.
func (m *Model) Train(ctx context.Context) error {
	algo, err := ParseAlgorithm(m.cfg.Algorithm)
	if err != nil {
		return m.sinks.fatalf("unknown algorithm '%s'", m.cfg.Algorithm)
	}

	m.Sync()
	start := time.Now()

	if algo == AlgoAuto {
		if err := m.optimizer.Optimize(ctx, m, AlgoSGDL1, autoWarmIter); err != nil {
			return err
		}
		if err := m.optimizer.Optimize(ctx, m, AlgoLBFGS, m.cfg.MaxIter); err != nil {
			return err
		}
	} else if err := m.optimizer.Optimize(ctx, m, algo, m.cfg.MaxIter); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Training completed",
		slog.String("algorithm", algo.String()),
		slog.Int("sequences", len(m.corpus.Seqs)),
		slog.Int("labels", m.labels.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// l1Penalty is the soft-threshold applied after each sgd-l1 iteration.
const l1Penalty = 0.01

// DefaultOptimizer is a compact reference trainer: a structured perceptron
// with algorithm-flavored update schedules. sgd-l1 adds an L1 shrink step
// after every iteration, the rprop variants decay the step size, and bcd
// uses a harmonic schedule. It exists to make the pipeline usable out of
// the box; replace it for serious estimation work.
type DefaultOptimizer struct{}

// Optimize implements Optimizer.
func (DefaultOptimizer) Optimize(ctx context.Context, m *Model, algo Algorithm, maxIter int) error {
	if m.labels.Len() == 0 {
		return errors.New("cannot train: no labeled sequences in corpus")
	}

	rate := 1.0
	for iter := 1; iter <= maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		mistakes := 0
		for _, seq := range m.corpus.Seqs {
			pred, _, err := m.decoder.Tag(m, seq)
			if err != nil {
				return err
			}
			for t := 0; t < seq.Len(); t++ {
				if pred[t] == seq.Labels[t] {
					continue
				}
				mistakes++
				for _, f := range seq.Feats[t] {
					m.weights.Emit[f][seq.Labels[t]] += rate
					m.weights.Emit[f][pred[t]] -= rate
				}
				if t > 0 && m.typ != MaxEnt {
					m.weights.Trans[seq.Labels[t-1]][seq.Labels[t]] += rate
					m.weights.Trans[pred[t-1]][pred[t]] -= rate
				}
			}
		}

		switch algo {
		case AlgoSGDL1:
			m.weights.shrink(l1Penalty)
		case AlgoRprop, AlgoRpropPlus, AlgoRpropMinus:
			rate *= 0.95
		case AlgoBCD:
			rate = 1.0 / float64(iter+1)
		}

		m.sinks.infof("[%d/%d] mistakes: %d", iter, maxIter, mistakes)
		if mistakes == 0 {
			break
		}
	}
	return nil
}

// shrink applies an L1 soft-threshold to every parameter.
func (w *Weights) shrink(penalty float64) {
	clip := func(v float64) float64 {
		switch {
		case v > penalty:
			return v - penalty
		case v < -penalty:
			return v + penalty
		}
		return 0
	}
	for _, row := range w.Emit {
		for j, v := range row {
			row[j] = clip(v)
		}
	}
	for _, row := range w.Trans {
		for j, v := range row {
			row[j] = clip(v)
		}
	}
}
