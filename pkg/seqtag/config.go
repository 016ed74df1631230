package seqtag

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the options a Model is constructed from. It is immutable
// after construction: the model keeps a reference and never writes through
// it, so a single Config may safely back several models.
type Config struct {
	// Algorithm names the training method. One of "l-bfgs", "sgd-l1",
	// "bcd", "rprop", "rprop+", "rprop-" or "auto".
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// ModelType selects the model family: "maxent", "memm" or "crf".
	ModelType string `json:"model_type" yaml:"model_type"`

	// NBest is the decoding breadth. 1 requests the single best labeling;
	// larger values request the top-N candidate labelings with scores.
	NBest int `json:"best_n" yaml:"best_n"`

	// MaxIter caps the number of training iterations.
	MaxIter int `json:"max_iterations" yaml:"max_iterations"`

	// ValidateInput enables strict checking of token records during reading.
	ValidateInput bool `json:"validate_input" yaml:"validate_input"`
}

// DefaultConfig returns a Config with safe default values: a CRF trained
// with l-bfgs, single-best decoding and a hundred-iteration budget.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:     "l-bfgs",
		ModelType:     "crf",
		NBest:         1,
		MaxIter:       100,
		ValidateInput: false,
	}
}

// LoadConfig reads a YAML configuration file. Absent keys keep their
// default values; the result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the option values against the closed algorithm and model
// type sets and the positive-integer constraints.
func (c *Config) Validate() error {
	if _, err := ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if _, err := ParseModelType(c.ModelType); err != nil {
		return err
	}
	if c.NBest < 1 {
		return fmt.Errorf("best_n must be positive, got %d", c.NBest)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIter)
	}
	return nil
}
