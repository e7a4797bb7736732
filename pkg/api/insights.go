package api

// Risk level classification.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Insight severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// SimilarProject is a historical project matched against the current one.
type SimilarProject struct {
	ProjectID          string   `json:"project_id"`
	SourceVersion      string   `json:"source_version"`
	TargetVersion      string   `json:"target_version"`
	FlowCount          int      `json:"flow_count"`
	Infrastructure     string   `json:"infrastructure"`
	EstimatedDays      float64  `json:"estimated_days"`
	ActualDays         float64  `json:"actual_days"`
	VariancePercentage float64  `json:"variance_percentage"`
	SimilarityScore    float64  `json:"similarity_score"`
	IssuesEncountered  []string `json:"issues_encountered,omitempty"`
	LessonsLearned     string   `json:"lessons_learned,omitempty"`
	ComplexityScore    float64  `json:"complexity_score"`
}

// RiskItem is a single identified risk.
type RiskItem struct {
	Item             string  `json:"item"`
	ImpactDaysRange  string  `json:"impact_days_range"`
	Reason           string  `json:"reason"`
	Recommendation   string  `json:"recommendation"`
	RiskLevel        string  `json:"risk_level"`
	ConfidenceImpact float64 `json:"confidence_impact"`
}

// RiskAssessment groups risk items by priority.
type RiskAssessment struct {
	HighPriorityRisks      []RiskItem `json:"high_priority_risks"`
	MediumPriorityRisks    []RiskItem `json:"medium_priority_risks"`
	LowPriorityRisks       []RiskItem `json:"low_priority_risks"`
	OverallRiskLevel       string     `json:"overall_risk_level"`
	ManualReviewPercentage float64    `json:"manual_review_percentage"`
	ConfidenceScore        float64    `json:"confidence_score"`
	TotalRiskItems         int        `json:"total_risk_items"`
}

// InsightCard is a short advisory message for the questionnaire UI.
type InsightCard struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Icon     string `json:"icon,omitempty"`
}

// CollectionStats summarizes the historical projects corpus.
type CollectionStats struct {
	TotalProjects         int            `json:"total_projects"`
	AvgVariancePercentage float64        `json:"avg_variance_percentage"`
	ByInfrastructure      map[string]int `json:"by_infrastructure"`
}
