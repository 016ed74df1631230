/*
Package seqtag provides an embeddable toolkit for statistical sequence
labeling in Go.

A host program constructs or loads a Model, configures feature-extraction
patterns, accumulates labeled training sequences, fits parameters with one
of several training algorithms, and then tags new text, receiving the input
back with a predicted label appended to each line.

The heavy lifting behind the facade (feature extraction, decoding, parameter
estimation) is reachable through narrow interfaces, each with a compact
in-package default. The defaults are good enough for experimentation and for
exercising the pipeline end to end; serious numerical work should swap in a
dedicated Optimizer.

For a complete usage example, see the README.md file.
*/
package seqtag
