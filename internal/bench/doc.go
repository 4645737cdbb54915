// Package bench orchestrates a benchmark: it runs each enabled execution
// strategy over the identical target list, one after another, and folds the
// per-strategy runs, aggregated stats and speedup ratios into a [Report].
package bench
