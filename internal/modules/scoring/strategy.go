package scoring

import (
	"context"

	"github.com/stockdash/backend/internal/domain"
)

// Strategy produces a recommendation for a symbol
type Strategy interface {
	Evaluate(ctx context.Context, in Input) (domain.ScoreResult, error)
	Name() string
}

// RuleBasedStrategy scores with the deterministic rule table. It performs no I/O.
type RuleBasedStrategy struct {
	engine *Engine
}

// NewRuleBasedStrategy creates a rule-based strategy
func NewRuleBasedStrategy() *RuleBasedStrategy {
	return &RuleBasedStrategy{engine: NewEngine()}
}

// Evaluate implements Strategy
func (s *RuleBasedStrategy) Evaluate(_ context.Context, in Input) (domain.ScoreResult, error) {
	return s.engine.Score(in)
}

// Name implements Strategy
func (s *RuleBasedStrategy) Name() string {
	return "rules"
}
