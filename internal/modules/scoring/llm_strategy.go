package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
)

const llmSystemPrompt = `You are a cautious equity analyst for a retail stock dashboard.
You receive a JSON description of one stock. Respond ONLY with compact JSON:
{"action":"buy|sell|hold|watch","confidence":30-99,"reasoning":["short reason", "..."]}`

var errMalformedReply = errors.New("malformed llm reply")

// LLMStrategy asks a language model for the recommendation and falls back to
// the rule table when the model fails or replies with something unusable.
type LLMStrategy struct {
	llm      domain.LLMProvider
	fallback *RuleBasedStrategy
	log      zerolog.Logger
}

// NewLLMStrategy creates an LLM-backed strategy
func NewLLMStrategy(llm domain.LLMProvider, log zerolog.Logger) *LLMStrategy {
	return &LLMStrategy{
		llm:      llm,
		fallback: NewRuleBasedStrategy(),
		log:      log.With().Str("strategy", "llm").Logger(),
	}
}

// Name implements Strategy
func (s *LLMStrategy) Name() string {
	return "llm"
}

// llmReply is the JSON shape requested from the model
type llmReply struct {
	Action     string          `json:"action"`
	Confidence json.Number     `json:"confidence"`
	Reasoning  json.RawMessage `json:"reasoning"`
}

// Evaluate implements Strategy
func (s *LLMStrategy) Evaluate(ctx context.Context, in Input) (domain.ScoreResult, error) {
	// The rule result is needed for the score and as the fallback, and it
	// enforces the missing-price precondition before any network call.
	base, err := s.fallback.Evaluate(ctx, in)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	prompt, err := buildPrompt(in, base)
	if err != nil {
		return base, nil
	}

	text, err := s.llm.Complete(ctx, llmSystemPrompt, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", in.Symbol).Msg("LLM request failed, using rule-based result")
		return base, nil
	}

	result, err := parseReply(text)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", in.Symbol).Msg("Unusable LLM reply, using rule-based result")
		return base, nil
	}

	result.Symbol = in.Symbol
	result.Score = base.Score
	result.Reasoning = append([]string{
		fmt.Sprintf("AI analyst verdict: %s (confidence %.0f)", result.Action, result.Confidence),
	}, result.Reasoning...)

	return result, nil
}

func buildPrompt(in Input, base domain.ScoreResult) (string, error) {
	state := map[string]interface{}{
		"symbol":       in.Symbol,
		"quote":        in.Quote,
		"fundamentals": in.Fundamentals,
		"sentiment":    in.Sentiment,
		"indicators":   in.Indicators,
		"rule_score":   base.Score,
	}

	b, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return "State:" + string(b), nil
}

// parseReply extracts the first JSON object from the model output and
// normalises it. Confidence given as a 0-1 fraction is scaled to percent.
func parseReply(text string) (domain.ScoreResult, error) {
	t := strings.TrimSpace(text)
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return domain.ScoreResult{}, errMalformedReply
	}

	var reply llmReply
	if err := json.Unmarshal([]byte(t[start:end+1]), &reply); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("%w: %v", errMalformedReply, err)
	}

	action := domain.Action(strings.ToLower(strings.TrimSpace(reply.Action)))
	switch action {
	case domain.ActionBuy, domain.ActionSell, domain.ActionHold, domain.ActionWatch:
	default:
		return domain.ScoreResult{}, fmt.Errorf("%w: unknown action %q", errMalformedReply, reply.Action)
	}

	confidence, err := reply.Confidence.Float64()
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("%w: confidence %q", errMalformedReply, reply.Confidence)
	}
	if confidence > 0 && confidence <= 1 {
		confidence *= 100
	}

	return domain.ScoreResult{
		Action:     action,
		Confidence: ClampConfidence(confidence),
		Reasoning:  parseReasoning(reply.Reasoning),
		Source:     domain.ScoreSourceLLM,
	}, nil
}

// parseReasoning accepts either a list of strings or a single string
func parseReasoning(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
