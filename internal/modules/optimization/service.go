package optimization

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/modules/portfolio"
)

// EventEmitter publishes module events
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// Service wraps the optimizer with validation, persistence and events.
type Service struct {
	optimizer *EqualWeightOptimizer
	store     domain.InsightStore
	events    EventEmitter
	log       zerolog.Logger
}

// NewService creates an optimization service. store and emitter may be nil.
func NewService(store domain.InsightStore, emitter EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		optimizer: NewEqualWeightOptimizer(),
		store:     store,
		events:    emitter,
		log:       log.With().Str("service", "optimization").Logger(),
	}
}

// OptimizeHoldings derives the current allocation from holdings and optimizes it
func (s *Service) OptimizeHoldings(ctx context.Context, holdings []domain.Holding) (domain.OptimizationResult, error) {
	if err := portfolio.ValidateHoldings(holdings); err != nil {
		return domain.OptimizationResult{}, err
	}
	return s.OptimizeAllocation(ctx, CurrentAllocation(holdings))
}

// OptimizeAllocation optimizes a percent allocation keyed by symbol
func (s *Service) OptimizeAllocation(ctx context.Context, current map[string]float64) (domain.OptimizationResult, error) {
	result := s.optimizer.Optimize(current)

	if s.store != nil {
		if err := s.store.SaveOptimization(ctx, result); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist optimization result")
		}
	}

	if s.events != nil {
		s.events.Emit("optimization", &events.PortfolioOptimizedData{
			Holdings:        len(result.RecommendedAllocation),
			Recommendations: len(result.Recommendations),
		})
	}

	s.log.Debug().
		Int("holdings", len(result.RecommendedAllocation)).
		Int("recommendations", len(result.Recommendations)).
		Msg("Portfolio optimized")

	return result, nil
}
