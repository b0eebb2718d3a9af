// Package margin implements the additive-increase, multiplicative-decrease
// controller that adapts the safety margin between the primary and secondary
// values. Violations grow the margin, sustained stability shrinks it, and
// every result is clamped to [MinMargin, primary+MaxMarginIncrease].
package margin
