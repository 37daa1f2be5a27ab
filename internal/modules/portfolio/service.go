// Package portfolio assesses diversification, volatility and concentration risk
// for a caller-supplied set of holdings.
package portfolio

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/events"
)

// maxConcurrentQuotes bounds parallel quote lookups for daily changes
const maxConcurrentQuotes = 4

// EventEmitter publishes module events
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// RiskService orchestrates risk assessment.
//
// Responsibilities:
//   - Validate holdings
//   - Fill in missing daily change percentages from the market data provider
//   - Persist the assessment and emit RISK_ASSESSED
type RiskService struct {
	market domain.MarketDataProvider
	store  domain.InsightStore
	events EventEmitter
	log    zerolog.Logger
}

// NewRiskService creates a risk service. Any dependency may be nil.
func NewRiskService(market domain.MarketDataProvider, store domain.InsightStore, emitter EventEmitter, log zerolog.Logger) *RiskService {
	return &RiskService{
		market: market,
		store:  store,
		events: emitter,
		log:    log.With().Str("service", "portfolio_risk").Logger(),
	}
}

// AssessRisk validates holdings and returns their risk assessment.
// dailyChanges maps symbol to today's change percent; symbols missing from it
// are looked up through the market data provider when one is configured.
func (s *RiskService) AssessRisk(ctx context.Context, holdings []domain.Holding, dailyChanges map[string]float64) (domain.RiskAssessment, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return domain.RiskAssessment{}, err
	}

	changes := s.completeChanges(ctx, holdings, dailyChanges)
	assessment := Assess(holdings, changes)

	if s.store != nil {
		if err := s.store.SaveRisk(ctx, assessment); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist risk assessment")
		}
	}

	if s.events != nil {
		s.events.Emit("portfolio", &events.RiskAssessedData{
			Holdings:      len(holdings),
			PortfolioRisk: assessment.PortfolioRisk,
			RiskFactors:   len(assessment.RiskFactors),
		})
	}

	return assessment, nil
}

// completeChanges copies the supplied changes and fetches the missing ones.
// Lookup failures leave the symbol without change data.
func (s *RiskService) completeChanges(ctx context.Context, holdings []domain.Holding, supplied map[string]float64) map[string]float64 {
	changes := make(map[string]float64, len(holdings))
	for sym, c := range supplied {
		changes[sym] = c
	}
	if s.market == nil {
		return changes
	}

	var missing []string
	seen := make(map[string]bool)
	for _, h := range holdings {
		if _, ok := changes[h.Symbol]; ok || seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		missing = append(missing, h.Symbol)
	}
	if len(missing) == 0 {
		return changes
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for _, sym := range missing {
		sym := sym
		g.Go(func() error {
			q, err := s.market.GetQuote(gctx, sym)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", sym).Msg("Daily change unavailable")
				return nil
			}
			if q == nil || q.ChangePercent == nil {
				return nil
			}
			mu.Lock()
			changes[sym] = *q.ChangePercent
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return changes
}
