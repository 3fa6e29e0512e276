// Package align computes minimum-edit-cost alignments between reference
// tokens and hypothesis words.
//
// Align fills an explicit (|ref|+1) x (|hyp|+1) table of costs and recorded
// moves with unit insertion, deletion, and substitution costs, then walks the
// recorded moves back from the bottom-right corner. When candidate moves cost
// the same, deletion wins over insertion, and insertion wins over the
// diagonal. That order decides which words surface as missed rather than
// mispronounced, so it is fixed rather than left to comparator behaviour.
//
// The reference projection of the returned operations (skipping insertions)
// always equals the reference input, and the hypothesis projection (skipping
// deletions) always equals the hypothesis input.
package align
