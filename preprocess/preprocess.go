// Package preprocess rewrites raw log text before it is tokenized.
package preprocess

import "github.com/fwojciec/logcolor"

// Chain applies preprocessors in order.
type Chain []logcolor.Preprocessor

// Compile-time interface verification.
var (
	_ logcolor.Preprocessor = Chain(nil)
	_ logcolor.Preprocessor = (*Deduplicator)(nil)
	_ logcolor.Preprocessor = (*Joiner)(nil)
)

func (c Chain) Process(input string) string {
	for _, p := range c {
		input = p.Process(input)
	}
	return input
}
