// Package api defines the shared request/response contracts exchanged
// between the estimation services, the HTTP layer, and the CLI.
package api

import "time"

// EnvironmentSetup mirrors the environment setup component for transport.
type EnvironmentSetup struct {
	TimePerEnvironment float64 `json:"time_per_environment"`
	EnvironmentCount   int     `json:"environment_count"`
	Subtotal           float64 `json:"subtotal"`
	Infrastructure     string  `json:"infrastructure"`
	HasMessageQueue    bool    `json:"has_message_queue"`
}

// TargetSetup mirrors the target configuration component.
type TargetSetup struct {
	Subtotal    float64 `json:"subtotal"`
	SetupStatus string  `json:"setup_status"`
}

// MigrationExecution mirrors the migration execution component.
type MigrationExecution struct {
	Subtotal        float64 `json:"subtotal"`
	FlowCount       int     `json:"flow_count"`
	FlowsPerBatch   int     `json:"flows_per_batch"`
	DaysPerBatch    int     `json:"days_per_batch"`
	RateDescription string  `json:"rate_description"`
}

// Buffer mirrors the contingency component.
type Buffer struct {
	BaseBuffer           float64  `json:"base_buffer"`
	ComplexityMultiplier float64  `json:"complexity_multiplier"`
	Subtotal             float64  `json:"subtotal"`
	ContributingFactors  []string `json:"contributing_factors"`
}

// FixedComponents mirrors the constant post-migration support times.
type FixedComponents struct {
	UATSupport        float64 `json:"uat_support"`
	GoLiveSupport     float64 `json:"golive_support"`
	KnowledgeTransfer float64 `json:"knowledge_transfer"`
	Total             float64 `json:"total"`
}

// Complexity mirrors the reporting-only complexity multiplier.
type Complexity struct {
	Multiplier          float64  `json:"multiplier"`
	Base                float64  `json:"base"`
	Additional          float64  `json:"additional"`
	ContributingFactors []string `json:"contributing_factors"`
}

// Breakdown carries every component of a deterministic estimate.
type Breakdown struct {
	EnvironmentSetup   EnvironmentSetup   `json:"environment_setup"`
	TargetSetup        TargetSetup        `json:"target_setup"`
	MigrationExecution MigrationExecution `json:"migration_execution"`
	Buffer             Buffer             `json:"buffer"`
	FixedComponents    FixedComponents    `json:"fixed_components"`
	Complexity         Complexity         `json:"complexity"`
}

// Totals are the derived duration totals.
type Totals struct {
	TotalDays   float64 `json:"total_days"`
	TotalWeeks  float64 `json:"total_weeks"`
	TotalMonths float64 `json:"total_months"`
}

// QuickEstimate is the response of the flag-driven quick calculation.
type QuickEstimate struct {
	Totals    Totals    `json:"totals"`
	Breakdown Breakdown `json:"breakdown"`
}

// LiveEstimate is the real-time result returned while the questionnaire is
// still being filled in.
type LiveEstimate struct {
	TotalDays       float64            `json:"total_days"`
	TotalWeeks      float64            `json:"total_weeks"`
	TotalMonths     float64            `json:"total_months"`
	Confidence      float64            `json:"confidence"`
	ConfidenceLevel string             `json:"confidence_level"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Warnings        []string           `json:"warnings"`
	IsComplete      bool               `json:"is_complete"`
	MissingFields   []string           `json:"missing_fields"`
}

// Adjustment is the historically informed adjustment applied to the
// presented estimate. It is bounded to ±20% of the deterministic total;
// a capped adjustment is flagged, never silently accepted.
type Adjustment struct {
	FinalDays                 float64  `json:"final_days"`
	AdjustmentFromBase        float64  `json:"adjustment_from_base"`
	AdjustmentReason          string   `json:"adjustment_reason"`
	AdjustmentCapped          bool     `json:"adjustment_capped"`
	SimilarProjectsReferenced []string `json:"similar_projects_referenced"`
}

// EstimationReport is the complete estimation report.
type EstimationReport struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Totals    Totals     `json:"totals"`
	Breakdown Breakdown  `json:"breakdown"`
	Adjusted  Adjustment `json:"adjusted"`

	RiskAssessment  RiskAssessment   `json:"risk_assessment"`
	SimilarProjects []SimilarProject `json:"similar_projects"`

	OverallConfidence     float64            `json:"overall_confidence"`
	ConfidenceLevel       string             `json:"confidence_level"`
	ConfidenceByComponent map[string]float64 `json:"confidence_by_component"`

	Recommendations []string `json:"recommendations"`
	Assumptions     []string `json:"assumptions"`
	Exclusions      []string `json:"exclusions"`

	SimilarProjectsCount int `json:"similar_projects_count"`
}

// ErrorResponse is the uniform error body of the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
