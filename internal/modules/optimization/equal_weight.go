// Package optimization recommends target allocations for a portfolio.
package optimization

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockdash/backend/internal/domain"
)

// Placeholder portfolio statistics reported until return and risk are
// estimated from price history.
const (
	PlaceholderExpectedReturn = 8.5
	PlaceholderExpectedRisk   = 12.3
)

// rebalanceThreshold is the percentage-point gap that triggers a suggestion
var rebalanceThreshold = decimal.NewFromInt(5)

var hundred = decimal.NewFromInt(100)

// allocationPlaces is the precision of recommended weights, in percent
const allocationPlaces = 2

// EqualWeightOptimizer assigns every held symbol the same weight.
type EqualWeightOptimizer struct{}

// NewEqualWeightOptimizer creates an equal-weight optimizer
func NewEqualWeightOptimizer() *EqualWeightOptimizer {
	return &EqualWeightOptimizer{}
}

// Optimize recommends 100/N percent per symbol and suggests a change wherever
// the current weight differs from the recommendation by more than 5 points.
//
// Recommended weights are rounded to two decimals and any rounding residue
// goes to the first symbol so the allocation sums to exactly 100.
// Recommendations are ordered by symbol.
func (o *EqualWeightOptimizer) Optimize(current map[string]float64) domain.OptimizationResult {
	symbols := make([]string, 0, len(current))
	for s := range current {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	currentCopy := make(map[string]float64, len(current))
	for s, w := range current {
		currentCopy[s] = w
	}

	result := domain.OptimizationResult{
		CurrentAllocation:     currentCopy,
		RecommendedAllocation: make(map[string]float64, len(symbols)),
		ExpectedReturn:        PlaceholderExpectedReturn,
		ExpectedRisk:          PlaceholderExpectedRisk,
		SharpeRatio:           sharpe(PlaceholderExpectedReturn, PlaceholderExpectedRisk),
		Recommendations:       []string{},
		Placeholder:           true,
	}
	if len(symbols) == 0 {
		return result
	}

	weights := equalWeights(len(symbols))
	for i, s := range symbols {
		rec := weights[i]
		result.RecommendedAllocation[s] = rec.InexactFloat64()

		cur := decimal.NewFromFloat(current[s])
		diff := rec.Sub(cur)
		if diff.Abs().LessThanOrEqual(rebalanceThreshold) {
			continue
		}

		verb := "Increase"
		if diff.IsNegative() {
			verb = "Reduce"
		}
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%s %s allocation by %s%%", verb, s, diff.Abs().StringFixed(1)))
	}

	return result
}

// equalWeights splits 100 into n parts at two-decimal precision with the
// rounding residue added to the first part.
func equalWeights(n int) []decimal.Decimal {
	share := hundred.DivRound(decimal.NewFromInt(int64(n)), allocationPlaces)

	weights := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := range weights {
		weights[i] = share
		sum = sum.Add(share)
	}
	weights[0] = weights[0].Add(hundred.Sub(sum))
	return weights
}

// CurrentAllocation converts holdings into percent-of-market-value weights.
// Holdings of the same symbol are merged; a zero-value portfolio yields zero weights.
func CurrentAllocation(holdings []domain.Holding) map[string]float64 {
	values := make(map[string]decimal.Decimal, len(holdings))
	total := decimal.Zero
	for _, h := range holdings {
		v := decimal.NewFromFloat(h.Quantity).Mul(decimal.NewFromFloat(h.CurrentPrice))
		values[h.Symbol] = values[h.Symbol].Add(v)
		total = total.Add(v)
	}

	out := make(map[string]float64, len(values))
	for s, v := range values {
		if total.IsZero() {
			out[s] = 0
			continue
		}
		out[s] = v.Mul(hundred).DivRound(total, allocationPlaces).InexactFloat64()
	}
	return out
}

func sharpe(expectedReturn, expectedRisk float64) float64 {
	if expectedRisk == 0 {
		return 0
	}
	return decimal.NewFromFloat(expectedReturn).
		DivRound(decimal.NewFromFloat(expectedRisk), 2).
		InexactFloat64()
}
