package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// AnalysisCompletedData contains data for AnalysisCompleted events
type AnalysisCompletedData struct {
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Indicators int     `json:"indicators"`
}

// EventType returns the event type for AnalysisCompletedData
func (d *AnalysisCompletedData) EventType() EventType {
	return AnalysisCompleted
}

// RiskAssessedData contains data for RiskAssessed events
type RiskAssessedData struct {
	Holdings      int     `json:"holdings"`
	PortfolioRisk float64 `json:"portfolio_risk"`
	RiskFactors   int     `json:"risk_factors"`
}

// EventType returns the event type for RiskAssessedData
func (d *RiskAssessedData) EventType() EventType {
	return RiskAssessed
}

// PortfolioOptimizedData contains data for PortfolioOptimized events
type PortfolioOptimizedData struct {
	Holdings        int `json:"holdings"`
	Recommendations int `json:"recommendations"`
}

// EventType returns the event type for PortfolioOptimizedData
func (d *PortfolioOptimizedData) EventType() EventType {
	return PortfolioOptimized
}

// CacheCleanedData contains data for CacheCleaned events
type CacheCleanedData struct {
	Deleted int64 `json:"deleted"`
}

// EventType returns the event type for CacheCleanedData
func (d *CacheCleanedData) EventType() EventType {
	return CacheCleaned
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
