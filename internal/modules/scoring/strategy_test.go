package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
)

type fakeLLM struct {
	reply  string
	err    error
	calls  int
	prompt string
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.prompt = userPrompt
	return f.reply, f.err
}

func bullishInput() Input {
	return Input{
		Symbol: "NVDA",
		Quote: &domain.Quote{
			Price:         f(120),
			ChangePercent: f(6),
			Volume:        f(6e6),
			PE:            f(8),
			MarketCap:     f(1.2e12),
		},
	}
}

func TestRuleBasedStrategy(t *testing.T) {
	s := NewRuleBasedStrategy()
	assert.Equal(t, "rules", s.Name())

	result, err := s.Evaluate(context.Background(), bullishInput())
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBuy, result.Action)
	assert.Equal(t, domain.ScoreSourceRules, result.Source)
}

func TestLLMStrategy_UsesWellFormedReply(t *testing.T) {
	llm := &fakeLLM{reply: "Here you go:\n```json\n{\"action\":\"Hold\",\"confidence\":0.82,\"reasoning\":[\"Valuation stretched\"]}\n```"}
	s := NewLLMStrategy(llm, zerolog.Nop())

	result, err := s.Evaluate(context.Background(), bullishInput())
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.prompt, "NVDA")
	assert.Equal(t, domain.ActionHold, result.Action)
	assert.Equal(t, 82.0, result.Confidence)
	assert.Equal(t, domain.ScoreSourceLLM, result.Source)
	assert.Equal(t, 96.0, result.Score)
	require.Len(t, result.Reasoning, 2)
	assert.Contains(t, result.Reasoning[0], "hold")
	assert.Equal(t, "Valuation stretched", result.Reasoning[1])
}

func TestLLMStrategy_ClampsConfidence(t *testing.T) {
	llm := &fakeLLM{reply: `{"action":"sell","confidence":150,"reasoning":"overbought"}`}
	s := NewLLMStrategy(llm, zerolog.Nop())

	result, err := s.Evaluate(context.Background(), bullishInput())
	require.NoError(t, err)
	assert.Equal(t, 99.0, result.Confidence)
	assert.Equal(t, []string{"AI analyst verdict: sell (confidence 99)", "overbought"}, result.Reasoning)
}

func TestLLMStrategy_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"provider error", &fakeLLM{err: errors.New("rate limited")}},
		{"no json", &fakeLLM{reply: "I think you should buy."}},
		{"bad action", &fakeLLM{reply: `{"action":"yolo","confidence":90}`}},
		{"missing confidence", &fakeLLM{reply: `{"action":"buy"}`}},
		{"broken json", &fakeLLM{reply: `{"action": "buy", "confidence": }`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLMStrategy(tt.llm, zerolog.Nop())

			result, err := s.Evaluate(context.Background(), bullishInput())
			require.NoError(t, err)
			assert.Equal(t, domain.ScoreSourceRules, result.Source)
			assert.Equal(t, domain.ActionBuy, result.Action)
			assert.Equal(t, 90.0, result.Confidence)
		})
	}
}

func TestLLMStrategy_MissingPriceSkipsProvider(t *testing.T) {
	llm := &fakeLLM{reply: `{"action":"buy","confidence":90}`}
	s := NewLLMStrategy(llm, zerolog.Nop())

	_, err := s.Evaluate(context.Background(), Input{Symbol: "X"})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Equal(t, 0, llm.calls)
}
