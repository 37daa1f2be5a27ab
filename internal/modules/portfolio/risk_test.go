package portfolio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
)

func holding(symbol string, qty, avg, cur float64) domain.Holding {
	return domain.Holding{Symbol: symbol, Quantity: qty, AveragePrice: avg, CurrentPrice: cur}
}

func factorNames(factors []domain.RiskFactor) []string {
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Factor
	}
	return names
}

func TestValidateHoldings(t *testing.T) {
	tests := []struct {
		name     string
		holdings []domain.Holding
		wantErr  bool
	}{
		{"empty is valid", nil, false},
		{"valid", []domain.Holding{holding("AAPL", 1, 100, 110)}, false},
		{"zero price allowed", []domain.Holding{holding("AAPL", 1, 0, 0)}, false},
		{"missing symbol", []domain.Holding{holding("", 1, 100, 110)}, true},
		{"zero quantity", []domain.Holding{holding("AAPL", 0, 100, 110)}, true},
		{"negative quantity", []domain.Holding{holding("AAPL", -2, 100, 110)}, true},
		{"negative price", []domain.Holding{holding("AAPL", 1, 100, -1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHoldings(tt.holdings)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCalculateDiversification(t *testing.T) {
	t.Run("single holding scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateDiversification([]domain.Holding{holding("AAPL", 10, 100, 100)}))
	})

	t.Run("zero value portfolio scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateDiversification([]domain.Holding{
			holding("AAPL", 10, 100, 0),
			holding("MSFT", 10, 100, 0),
		}))
	})

	t.Run("four equal holdings", func(t *testing.T) {
		// HHI = 4 × 0.25² = 0.25
		holdings := []domain.Holding{
			holding("A", 1, 100, 100),
			holding("B", 1, 100, 100),
			holding("C", 1, 100, 100),
			holding("D", 1, 100, 100),
		}
		assert.InDelta(t, 75.0, CalculateDiversification(holdings), 1e-9)
	})

	t.Run("lots of one symbol score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateDiversification([]domain.Holding{
			holding("AAPL", 10, 100, 100),
			holding("AAPL", 10, 90, 100),
		}))
	})

	t.Run("lots merged before weighting", func(t *testing.T) {
		// AAPL 500+500, MSFT 1000 → weights 0.5/0.5, HHI 0.5
		holdings := []domain.Holding{
			holding("AAPL", 5, 100, 100),
			holding("AAPL", 5, 80, 100),
			holding("MSFT", 10, 100, 100),
		}
		assert.InDelta(t, 50.0, CalculateDiversification(holdings), 1e-9)
	})

	t.Run("concentrated pair", func(t *testing.T) {
		// weights 0.9/0.1 → HHI 0.82
		holdings := []domain.Holding{
			holding("A", 9, 100, 100),
			holding("B", 1, 100, 100),
		}
		assert.InDelta(t, 18.0, CalculateDiversification(holdings), 1e-9)
	})
}

func TestCalculateVolatility(t *testing.T) {
	holdings := []domain.Holding{
		holding("A", 1, 100, 100),
		holding("B", 1, 100, 100),
		holding("C", 1, 100, 100),
	}

	t.Run("mean absolute change doubled", func(t *testing.T) {
		v := CalculateVolatility(holdings, map[string]float64{"A": 2, "B": -4, "C": 3})
		assert.InDelta(t, 6.0, v, 1e-9)
	})

	t.Run("missing symbols skipped", func(t *testing.T) {
		v := CalculateVolatility(holdings, map[string]float64{"A": -5})
		assert.InDelta(t, 10.0, v, 1e-9)
	})

	t.Run("repeated lots count once", func(t *testing.T) {
		lots := append([]domain.Holding{holding("A", 3, 100, 100)}, holdings...)
		v := CalculateVolatility(lots, map[string]float64{"A": 2, "B": -4, "C": 3})
		assert.InDelta(t, 6.0, v, 1e-9)
	})

	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateVolatility(holdings, nil))
	})

	t.Run("capped at 100", func(t *testing.T) {
		v := CalculateVolatility(holdings, map[string]float64{"A": 80, "B": -90})
		assert.Equal(t, 100.0, v)
	})
}

func TestAssess_Composite(t *testing.T) {
	holdings := []domain.Holding{
		holding("A", 1, 100, 100),
		holding("B", 1, 100, 100),
		holding("C", 1, 100, 100),
		holding("D", 1, 100, 100),
	}

	result := Assess(holdings, map[string]float64{"A": 1, "B": -1, "C": 2, "D": -2})

	// diversification 75, volatility 3 → 25×0.4 + 3×0.6 = 11.8
	assert.Equal(t, 75.0, result.DiversificationScore)
	assert.Equal(t, 3.0, result.VolatilityScore)
	assert.Equal(t, 11.8, result.PortfolioRisk)
	assert.Equal(t, []string{"Limited Diversification"}, factorNames(result.RiskFactors))
}

func TestAssess_ConcentrationRisk(t *testing.T) {
	holdings := []domain.Holding{
		holding("AAPL", 4, 100, 100),
		holding("MSFT", 2, 100, 100),
		holding("GOOG", 2, 100, 100),
		holding("AMZN", 1, 100, 100),
		holding("NVDA", 1, 100, 100),
	}

	result := Assess(holdings, nil)

	require.NotEmpty(t, result.RiskFactors)
	first := result.RiskFactors[0]
	assert.Equal(t, "Concentration Risk", first.Factor)
	assert.Equal(t, domain.ImpactHigh, first.Impact)
	assert.Contains(t, first.Description, "AAPL")
	assert.Contains(t, first.Description, "40.0%")
	assert.Equal(t, []string{"Concentration Risk"}, factorNames(result.RiskFactors))
	assert.Contains(t, result.Recommendations[0], "30%")
}

func TestAssess_ConcentrationRestEvenlySplit(t *testing.T) {
	// 40/15/15/15/15 → HHI 0.16 + 4×0.0225 = 0.25
	holdings := []domain.Holding{
		holding("AAPL", 8, 100, 100),
		holding("MSFT", 3, 100, 100),
		holding("GOOG", 3, 100, 100),
		holding("AMZN", 3, 100, 100),
		holding("NVDA", 3, 100, 100),
	}

	result := Assess(holdings, nil)

	assert.Equal(t, 75.0, result.DiversificationScore)
	require.Len(t, result.RiskFactors, 1)
	assert.Equal(t, "Concentration Risk", result.RiskFactors[0].Factor)
	assert.Equal(t, domain.ImpactHigh, result.RiskFactors[0].Impact)
	assert.Equal(t, "AAPL represents 40.0% of portfolio value", result.RiskFactors[0].Description)
}

func TestAssess_SingleSymbolInSeveralLots(t *testing.T) {
	holdings := []domain.Holding{
		holding("AAPL", 10, 100, 100),
		holding("AAPL", 10, 100, 100),
	}

	result := Assess(holdings, map[string]float64{"AAPL": 1})

	assert.Equal(t, 0.0, result.DiversificationScore)
	assert.Equal(t, 2.0, result.VolatilityScore)
	// 100×0.4 + 2×0.6
	assert.Equal(t, 41.2, result.PortfolioRisk)
	assert.ElementsMatch(t, []string{"Concentration Risk", "Limited Diversification"}, factorNames(result.RiskFactors))
}

func TestAssess_SingleHolding(t *testing.T) {
	result := Assess([]domain.Holding{holding("AAPL", 10, 100, 100)}, map[string]float64{"AAPL": 1})

	assert.Equal(t, 0.0, result.DiversificationScore)
	// (100-0)×0.4 + 2×0.6
	assert.Equal(t, 41.2, result.PortfolioRisk)
	assert.ElementsMatch(t, []string{"Concentration Risk", "Limited Diversification"}, factorNames(result.RiskFactors))
}

func TestAssess_VolatilityFactor(t *testing.T) {
	holdings := []domain.Holding{
		holding("A", 1, 100, 100),
		holding("B", 1, 100, 100),
		holding("C", 1, 100, 100),
		holding("D", 1, 100, 100),
		holding("E", 1, 100, 100),
	}

	medium := Assess(holdings, map[string]float64{"A": 15, "B": -15})
	require.Len(t, medium.RiskFactors, 1)
	assert.Equal(t, "High Volatility", medium.RiskFactors[0].Factor)
	assert.Equal(t, domain.ImpactMedium, medium.RiskFactors[0].Impact)

	high := Assess(holdings, map[string]float64{"A": 30, "B": -30})
	require.Len(t, high.RiskFactors, 1)
	assert.Equal(t, domain.ImpactHigh, high.RiskFactors[0].Impact)
}

func TestAssess_UnrealizedLosses(t *testing.T) {
	holdings := []domain.Holding{
		holding("A", 1, 100, 80),
		holding("B", 1, 100, 80),
		holding("C", 1, 100, 80),
		holding("D", 1, 100, 80),
		holding("E", 1, 100, 80),
	}

	result := Assess(holdings, nil)
	assert.Equal(t, []string{"Unrealized Losses"}, factorNames(result.RiskFactors))
	assert.Contains(t, result.RiskFactors[0].Description, "20.0%")
}

func TestAssess_Empty(t *testing.T) {
	result := Assess(nil, nil)

	assert.Equal(t, 0.0, result.DiversificationScore)
	assert.Equal(t, 0.0, result.VolatilityScore)
	assert.Equal(t, 40.0, result.PortfolioRisk)
	assert.Empty(t, result.RiskFactors)
	assert.Equal(t, []string{"Portfolio risk profile looks balanced; keep monitoring"}, result.Recommendations)
}

func TestAssess_ScoresBounded(t *testing.T) {
	holdings := []domain.Holding{holding("A", 1, 100, 100)}
	result := Assess(holdings, map[string]float64{"A": 500})

	assert.LessOrEqual(t, result.PortfolioRisk, 100.0)
	assert.GreaterOrEqual(t, result.PortfolioRisk, 0.0)
	assert.Equal(t, 100.0, result.VolatilityScore)
}

func TestWeights_MergesDuplicates(t *testing.T) {
	w := Weights([]domain.Holding{
		holding("A", 1, 100, 100),
		holding("A", 1, 100, 100),
		holding("B", 2, 100, 100),
	})

	assert.InDelta(t, 0.5, w["A"], 1e-9)
	assert.InDelta(t, 0.5, w["B"], 1e-9)
}
