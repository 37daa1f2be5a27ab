package testing

import (
	"context"
	"sync"

	"github.com/stockdash/backend/internal/domain"
)

// MockMarketData is a mock implementation of domain.MarketDataProvider for testing
type MockMarketData struct {
	mu       sync.RWMutex
	quotes   map[string]*domain.Quote
	bars     map[string][]domain.PriceBar
	quoteErr error
	barsErr  error
	calls    map[string]int
}

// NewMockMarketData creates a new mock market data provider
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		quotes: make(map[string]*domain.Quote),
		bars:   make(map[string][]domain.PriceBar),
		calls:  make(map[string]int),
	}
}

// SetQuote sets the quote returned for a symbol
func (m *MockMarketData) SetQuote(symbol string, quote *domain.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = quote
}

// SetBars sets the price bars returned for a symbol
func (m *MockMarketData) SetBars(symbol string, bars []domain.PriceBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// SetQuoteError makes every GetQuote call fail
func (m *MockMarketData) SetQuoteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteErr = err
}

// SetBarsError makes every GetPriceBars call fail
func (m *MockMarketData) SetBarsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barsErr = err
}

// Calls returns how many times method was invoked
func (m *MockMarketData) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// GetQuote returns the configured quote, or nil when none is set
func (m *MockMarketData) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetQuote"]++
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quotes[symbol], nil
}

// GetPriceBars returns the configured bars
func (m *MockMarketData) GetPriceBars(ctx context.Context, symbol string, period string) ([]domain.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetPriceBars"]++
	if m.barsErr != nil {
		return nil, m.barsErr
	}
	return m.bars[symbol], nil
}

// MockFundamentals is a mock implementation of domain.FundamentalsProvider for testing
type MockFundamentals struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.FundamentalSnapshot
	err       error
}

// NewMockFundamentals creates a new mock fundamentals provider
func NewMockFundamentals() *MockFundamentals {
	return &MockFundamentals{snapshots: make(map[string]*domain.FundamentalSnapshot)}
}

// Set sets the snapshot returned for a symbol
func (m *MockFundamentals) Set(symbol string, snap *domain.FundamentalSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[symbol] = snap
}

// SetError sets the error to return
func (m *MockFundamentals) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetFundamentals returns the configured snapshot
func (m *MockFundamentals) GetFundamentals(ctx context.Context, symbol string) (*domain.FundamentalSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[symbol], nil
}

// MockSentiment is a mock implementation of domain.SentimentProvider for testing
type MockSentiment struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.SentimentSnapshot
	err       error
}

// NewMockSentiment creates a new mock sentiment provider
func NewMockSentiment() *MockSentiment {
	return &MockSentiment{snapshots: make(map[string]*domain.SentimentSnapshot)}
}

// Set sets the sentiment returned for a symbol
func (m *MockSentiment) Set(symbol string, snap *domain.SentimentSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[symbol] = snap
}

// SetError sets the error to return
func (m *MockSentiment) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetSentiment returns the configured sentiment
func (m *MockSentiment) GetSentiment(ctx context.Context, symbol string) (*domain.SentimentSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[symbol], nil
}

// MockIndicators is a mock implementation of domain.IndicatorProvider for testing
type MockIndicators struct {
	mu         sync.RWMutex
	indicators map[string]*domain.EnhancedIndicators
	err        error
}

// NewMockIndicators creates a new mock indicator provider
func NewMockIndicators() *MockIndicators {
	return &MockIndicators{indicators: make(map[string]*domain.EnhancedIndicators)}
}

// Set sets the indicators returned for a symbol
func (m *MockIndicators) Set(symbol string, ind *domain.EnhancedIndicators) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indicators[symbol] = ind
}

// SetError sets the error to return
func (m *MockIndicators) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetIndicators returns the configured indicators
func (m *MockIndicators) GetIndicators(ctx context.Context, symbol string) (*domain.EnhancedIndicators, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.indicators[symbol], nil
}

// MockLLM is a mock implementation of domain.LLMProvider for testing
type MockLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

// NewMockLLM creates a mock that answers every prompt with reply
func NewMockLLM(reply string) *MockLLM {
	return &MockLLM{reply: reply}
}

// SetError sets the error to return
func (m *MockLLM) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns the user prompts received so far
func (m *MockLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Complete records the prompt and returns the configured reply
func (m *MockLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, userPrompt)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// MockInsightStore is an in-memory implementation of domain.InsightStore for testing
type MockInsightStore struct {
	mu            sync.RWMutex
	scores        []domain.ScoreResult
	risks         []domain.RiskAssessment
	optimizations []domain.OptimizationResult
	err           error
}

// NewMockInsightStore creates a new in-memory insight store
func NewMockInsightStore() *MockInsightStore {
	return &MockInsightStore{}
}

// SetError sets the error returned by every save
func (m *MockInsightStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SaveScore records a score
func (m *MockInsightStore) SaveScore(ctx context.Context, result domain.ScoreResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.scores = append(m.scores, result)
	return nil
}

// SaveRisk records a risk assessment
func (m *MockInsightStore) SaveRisk(ctx context.Context, assessment domain.RiskAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.risks = append(m.risks, assessment)
	return nil
}

// SaveOptimization records an optimization result
func (m *MockInsightStore) SaveOptimization(ctx context.Context, result domain.OptimizationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.optimizations = append(m.optimizations, result)
	return nil
}

// Scores returns the saved scores
func (m *MockInsightStore) Scores() []domain.ScoreResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ScoreResult(nil), m.scores...)
}

// Risks returns the saved risk assessments
func (m *MockInsightStore) Risks() []domain.RiskAssessment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.RiskAssessment(nil), m.risks...)
}

// Optimizations returns the saved optimization results
func (m *MockInsightStore) Optimizations() []domain.OptimizationResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.OptimizationResult(nil), m.optimizations...)
}
