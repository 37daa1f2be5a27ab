package portfolio

import (
	"fmt"
	"math"
	"sort"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/pkg/formulas"
)

const (
	// concentrationThreshold is the single-holding weight above which
	// concentration risk is reported
	concentrationThreshold = 0.30

	highVolatilityScore     = 50.0
	elevatedVolatilityScore = 25.0

	minDiversifiedHoldings = 5

	// unrealizedLossThreshold is the portfolio-wide loss (fraction of cost basis)
	// that triggers a review recommendation
	unrealizedLossThreshold = -0.10

	diversificationWeight = 0.4
	volatilityWeight      = 0.6
)

// ValidateHoldings rejects non-positive quantities and negative prices
func ValidateHoldings(holdings []domain.Holding) error {
	for _, h := range holdings {
		if h.Symbol == "" {
			return fmt.Errorf("%w: holding without symbol", domain.ErrInvalidInput)
		}
		if h.Quantity <= 0 {
			return fmt.Errorf("%w: %s quantity must be positive", domain.ErrInvalidInput, h.Symbol)
		}
		if h.AveragePrice < 0 || h.CurrentPrice < 0 {
			return fmt.Errorf("%w: %s prices must not be negative", domain.ErrInvalidInput, h.Symbol)
		}
	}
	return nil
}

// CalculateDiversification scores diversification from the Herfindahl-Hirschman
// index of per-symbol market-value weights: max(0, 100 - HHI×100).
// Lots of the same symbol count as one holding. Fewer than two distinct
// symbols, or a zero-value portfolio, scores 0.
func CalculateDiversification(holdings []domain.Holding) float64 {
	weights := Weights(holdings)
	if len(weights) <= 1 {
		return 0
	}

	values := make([]float64, 0, len(weights))
	for _, w := range weights {
		values = append(values, w)
	}

	hhi := formulas.HerfindahlIndex(values)
	if hhi == 0 {
		return 0
	}
	return math.Max(0, 100-hhi*100)
}

// CalculateVolatility scores volatility as twice the mean absolute daily change
// percent, capped at 100. Each symbol counts once; symbols without change
// data are skipped.
func CalculateVolatility(holdings []domain.Holding, dailyChanges map[string]float64) float64 {
	var changes []float64
	seen := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		if seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		if c, ok := dailyChanges[h.Symbol]; ok {
			changes = append(changes, c)
		}
	}
	if len(changes) == 0 {
		return 0
	}

	return math.Min(100, formulas.MeanAbs(changes)*2)
}

// Weights returns each symbol's share of total market value as a fraction.
// Holdings of the same symbol are merged.
func Weights(holdings []domain.Holding) map[string]float64 {
	weights := make(map[string]float64, len(holdings))
	total := 0.0
	for _, h := range holdings {
		weights[h.Symbol] += h.MarketValue()
		total += h.MarketValue()
	}
	if total == 0 {
		for s := range weights {
			weights[s] = 0
		}
		return weights
	}
	for s := range weights {
		weights[s] /= total
	}
	return weights
}

// Assess computes the full risk assessment.
//
// Composite risk = (100 - diversification)×0.4 + volatility×0.6, bounded to 0-100.
func Assess(holdings []domain.Holding, dailyChanges map[string]float64) domain.RiskAssessment {
	diversification := CalculateDiversification(holdings)
	volatility := CalculateVolatility(holdings, dailyChanges)
	risk := formulas.Clamp((100-diversification)*diversificationWeight+volatility*volatilityWeight, 0, 100)

	factors := riskFactors(holdings, volatility)

	return domain.RiskAssessment{
		PortfolioRisk:        round1(risk),
		DiversificationScore: round1(diversification),
		VolatilityScore:      round1(volatility),
		RiskFactors:          factors,
		Recommendations:      recommendations(factors),
	}
}

func riskFactors(holdings []domain.Holding, volatility float64) []domain.RiskFactor {
	factors := []domain.RiskFactor{}

	weights := Weights(holdings)
	symbols := make([]string, 0, len(weights))
	for s, w := range weights {
		if w > concentrationThreshold {
			symbols = append(symbols, s)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		if weights[symbols[i]] != weights[symbols[j]] {
			return weights[symbols[i]] > weights[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})
	for _, s := range symbols {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Concentration Risk",
			Impact:      domain.ImpactHigh,
			Description: fmt.Sprintf("%s represents %.1f%% of portfolio value", s, weights[s]*100),
		})
	}

	switch {
	case volatility >= highVolatilityScore:
		factors = append(factors, domain.RiskFactor{
			Factor:      "High Volatility",
			Impact:      domain.ImpactHigh,
			Description: fmt.Sprintf("Average daily price swings are large (volatility score %.0f)", volatility),
		})
	case volatility >= elevatedVolatilityScore:
		factors = append(factors, domain.RiskFactor{
			Factor:      "High Volatility",
			Impact:      domain.ImpactMedium,
			Description: fmt.Sprintf("Daily price swings are elevated (volatility score %.0f)", volatility),
		})
	}

	if n := len(weights); n > 0 && n < minDiversifiedHoldings {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Limited Diversification",
			Impact:      domain.ImpactMedium,
			Description: fmt.Sprintf("Only %d distinct holdings", n),
		})
	}

	var cost, gain float64
	for _, h := range holdings {
		cost += h.CostBasis()
		gain += h.GainLoss()
	}
	if cost > 0 && gain/cost < unrealizedLossThreshold {
		factors = append(factors, domain.RiskFactor{
			Factor:      "Unrealized Losses",
			Impact:      domain.ImpactMedium,
			Description: fmt.Sprintf("Portfolio is down %.1f%% from cost basis", -gain/cost*100),
		})
	}

	return factors
}

func recommendations(factors []domain.RiskFactor) []string {
	recs := []string{}
	seen := make(map[string]bool)

	for _, f := range factors {
		if seen[f.Factor] {
			continue
		}
		seen[f.Factor] = true

		switch f.Factor {
		case "Concentration Risk":
			recs = append(recs, "Trim positions above 30% of the portfolio and spread the proceeds across other holdings")
		case "High Volatility":
			recs = append(recs, "Add lower-volatility holdings such as dividend payers or broad index funds")
		case "Limited Diversification":
			recs = append(recs, fmt.Sprintf("Hold at least %d positions across different sectors", minDiversifiedHoldings))
		case "Unrealized Losses":
			recs = append(recs, "Review losing positions and confirm the original investment thesis still holds")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Portfolio risk profile looks balanced; keep monitoring")
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
