// Package report renders evaluation results for people and for other tools:
// a rounded terminal table with an optional summary, CSV with a fixed column
// order, and indented JSON that also carries phonetic hints.
package report
