// Package textnorm canonicalizes reference prompts and transcribed words into
// comparable tokens.
//
// Normalization transliterates to ASCII, lowercases, replaces punctuation with
// spaces, collapses contractions by dropping apostrophes, and squeezes
// whitespace. The result is stable under repeated application, so callers may
// normalize at any boundary without worrying about double processing.
package textnorm
