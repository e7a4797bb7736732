// Package estimator orchestrates the estimation workflow: questionnaire
// validation, the deterministic rules engine, historical retrieval, risk
// assessment, and confidence scoring. The engine output is authoritative;
// retrieval and risk only annotate it.
package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ace-estimator/internal/history"
	"ace-estimator/internal/insight"
	"ace-estimator/internal/questionnaire"
	"ace-estimator/internal/rules"
	"ace-estimator/pkg/api"
	"ace-estimator/pkg/confidence"
)

// The presented estimate may deviate from the deterministic total by at most
// this fraction, regardless of what the historical corpus suggests.
const maxAdjustmentFraction = 0.20

// Weights of the overall confidence blend.
var overallConfidenceWeights = []float64{0.4, 0.3, 0.3}

// Service composes the estimation pipeline. The retriever may be nil, in
// which case reports carry no historical context and no adjustment.
type Service struct {
	engine    *rules.Engine
	retriever history.Retriever
	advisor   insight.Advisor
	log       zerolog.Logger
}

// NewService wires the pipeline together.
func NewService(engine *rules.Engine, retriever history.Retriever, advisor insight.Advisor, log zerolog.Logger) *Service {
	return &Service{
		engine:    engine,
		retriever: retriever,
		advisor:   advisor,
		log:       log.With().Str("component", "estimator").Logger(),
	}
}

// QuickEstimate runs the rules engine directly on a feature vector. Used by
// the CLI and the quick-estimate endpoint, where no questionnaire exists.
func (s *Service) QuickEstimate(f rules.ProjectFeatures) (api.QuickEstimate, error) {
	breakdown, totals, err := s.engine.CalculateTotalEstimate(f)
	if err != nil {
		return api.QuickEstimate{}, err
	}
	return api.QuickEstimate{
		Totals:    toAPITotals(totals),
		Breakdown: toAPIBreakdown(breakdown),
	}, nil
}

// LiveEstimate produces a real-time estimate from a possibly incomplete
// questionnaire. Missing required fields yield a zero estimate plus the list
// of what is still needed; confidence grows with completeness but never
// drops below 0.6 so the preview stays usable early in the flow.
func (s *Service) LiveEstimate(q *questionnaire.Questionnaire) api.LiveEstimate {
	missing := missingRequiredFields(q)
	score := confidence.Clamp(completeness(q))
	if score < confidence.LowConfidence {
		score = confidence.LowConfidence
	}

	if len(missing) > 0 {
		return api.LiveEstimate{
			Confidence:      score,
			ConfidenceLevel: confidence.Level(score),
			Breakdown:       map[string]float64{},
			Warnings:        []string{"estimate unavailable until required fields are filled in"},
			IsComplete:      false,
			MissingFields:   missing,
		}
	}

	breakdown, totals, err := s.engine.CalculateTotalEstimate(q.Features())
	if err != nil {
		return api.LiveEstimate{
			Confidence:      score,
			ConfidenceLevel: confidence.Level(score),
			Breakdown:       map[string]float64{},
			Warnings:        []string{err.Error()},
			IsComplete:      false,
			MissingFields:   missing,
		}
	}

	var warnings []string
	if rules.IsLegacySource(string(q.Source.ProductVersion)) {
		warnings = append(warnings, "legacy source version increases contingency; verify node compatibility")
	}
	if q.Source.HasCustomPlugins && q.Source.CustomPluginCount == 0 {
		warnings = append(warnings, "custom plugins reported but plugin count is missing")
	}

	return api.LiveEstimate{
		TotalDays:       totals.TotalDays.InexactFloat64(),
		TotalWeeks:      totals.TotalWeeks.InexactFloat64(),
		TotalMonths:     totals.TotalMonths.InexactFloat64(),
		Confidence:      score,
		ConfidenceLevel: confidence.Level(score),
		Breakdown: map[string]float64{
			"environment_setup":   breakdown.EnvironmentSetup.Subtotal.InexactFloat64(),
			"target_setup":        breakdown.TargetSetup.Subtotal.InexactFloat64(),
			"migration_execution": breakdown.MigrationExecution.Subtotal.InexactFloat64(),
			"buffer":              breakdown.Buffer.Subtotal.InexactFloat64(),
			"fixed_components":    breakdown.FixedComponents.Total().InexactFloat64(),
		},
		Warnings:   warnings,
		IsComplete: true,
	}
}

// FullReport validates the questionnaire and produces the complete report:
// deterministic estimate, historical context, risk assessment, bounded
// adjustment, and blended confidence.
func (s *Service) FullReport(ctx context.Context, q *questionnaire.Questionnaire) (api.EstimationReport, error) {
	if err := q.Validate(); err != nil {
		return api.EstimationReport{}, err
	}

	features := q.Features()
	breakdown, totals, err := s.engine.CalculateTotalEstimate(features)
	if err != nil {
		return api.EstimationReport{}, err
	}

	matches := s.similarProjects(ctx, q, features)
	assessment := s.advisor.AssessRisks(features)
	adjusted := adjust(totals.TotalDays, matches)

	completenessScore := confidence.Clamp(completeness(q))
	similarityScore := confidence.LowConfidence
	if len(matches) > 0 {
		similarityScore = confidence.Clamp(matches[0].SimilarityScore)
	}
	overall := confidence.WeightedAverage(
		[]float64{completenessScore, similarityScore, assessment.ConfidenceScore},
		overallConfidenceWeights,
	)

	projectID := q.ProjectID
	if projectID == "" {
		projectID = "EST_" + uuid.New().String()[:8]
	}

	report := api.EstimationReport{
		ProjectID:   projectID,
		ProjectName: q.ProjectName,
		GeneratedAt: time.Now().UTC(),

		Totals:    toAPITotals(totals),
		Breakdown: toAPIBreakdown(breakdown),
		Adjusted:  adjusted,

		RiskAssessment:  assessment,
		SimilarProjects: toAPISimilarProjects(matches),

		OverallConfidence:     overall,
		ConfidenceLevel:       confidence.Level(overall),
		ConfidenceByComponent: componentConfidence(completenessScore, similarityScore, assessment.ConfidenceScore),

		Recommendations: recommendations(features, assessment),
		Assumptions:     standardAssumptions,
		Exclusions:      standardExclusions,

		SimilarProjectsCount: len(matches),
	}

	s.log.Info().
		Str("project_id", report.ProjectID).
		Float64("total_days", report.Totals.TotalDays).
		Float64("final_days", report.Adjusted.FinalDays).
		Int("similar_projects", report.SimilarProjectsCount).
		Str("risk_level", assessment.OverallRiskLevel).
		Msg("estimation report generated")

	return report, nil
}

func (s *Service) similarProjects(ctx context.Context, q *questionnaire.Questionnaire, f rules.ProjectFeatures) []history.Match {
	if s.retriever == nil {
		return nil
	}

	profile := history.Profile{
		SourceVersion:    string(q.Source.ProductVersion),
		TargetVersion:    q.Target.ProductVersion,
		FlowCount:        f.FlowCount,
		Infrastructure:   string(f.Infrastructure),
		HasMQ:            f.HasMessageQueue,
		HasCustomPlugins: f.HasCustomPlugins,
	}
	matches, err := s.retriever.SimilarProjects(ctx, profile, 10)
	if err != nil {
		// Historical context is an enrichment; the report still stands
		// on the deterministic estimate alone.
		s.log.Warn().Err(err).Msg("similar project retrieval failed")
		return nil
	}
	return matches
}

// adjust derives the presented estimate from the corpus: the mean variance
// of the matched projects, clamped to ±20% of the deterministic total.
func adjust(totalDays decimal.Decimal, matches []history.Match) api.Adjustment {
	base := totalDays.InexactFloat64()
	if len(matches) == 0 {
		return api.Adjustment{
			FinalDays:        base,
			AdjustmentReason: "no comparable historical projects; deterministic estimate presented unchanged",
		}
	}

	var variances []float64
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		variances = append(variances, m.VariancePercentage/100)
		ids = append(ids, m.ID)
	}
	fraction := confidence.Mean(variances)

	capped := false
	if fraction > maxAdjustmentFraction {
		fraction = maxAdjustmentFraction
		capped = true
	} else if fraction < -maxAdjustmentFraction {
		fraction = -maxAdjustmentFraction
		capped = true
	}

	final := totalDays.Mul(decimal.NewFromFloat(1 + fraction)).Round(2)
	reason := fmt.Sprintf("mean variance of %d similar historical projects: %+.1f%%", len(matches), fraction*100)
	if capped {
		reason += " (capped at ±20%)"
	}

	return api.Adjustment{
		FinalDays:                 final.InexactFloat64(),
		AdjustmentFromBase:        final.Sub(totalDays).Round(2).InexactFloat64(),
		AdjustmentReason:          reason,
		AdjustmentCapped:          capped,
		SimilarProjectsReferenced: ids,
	}
}

// missingRequiredFields names the fields without which no estimate exists.
func missingRequiredFields(q *questionnaire.Questionnaire) []string {
	var missing []string
	if q.Source.TotalFlows < 1 {
		missing = append(missing, "total_flows")
	}
	if len(q.Target.Environments) == 0 {
		missing = append(missing, "environments")
	}
	if q.Target.HostPlatform == "" {
		missing = append(missing, "infrastructure")
	}
	return missing
}

// completeness is the filled fraction of the fields the estimate quality
// depends on, required and optional alike.
func completeness(q *questionnaire.Questionnaire) float64 {
	checks := []bool{
		q.Source.TotalFlows >= 1,
		len(q.Target.Environments) > 0,
		q.Target.HostPlatform != "",
		q.Source.ProductVersion != "",
		q.Source.HostPlatform != "",
		q.Target.ProductVersion != "",
		!q.Source.HasMQ || q.Source.MQDetails != nil,
		len(q.Source.IntegrationProtocols) > 0,
		len(q.Source.ExternalSystems) > 0,
		len(q.General.MigrationDrivers) > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(checks))
}

// componentConfidence assigns per-component confidence. The deterministic
// components are fixed-rate arithmetic and stay high; the buffer and the
// overall context track risk and corpus quality.
func componentConfidence(completenessScore, similarityScore, riskScore float64) map[string]float64 {
	return map[string]float64{
		"environment_setup":   confidence.HighConfidence,
		"target_setup":        confidence.HighConfidence,
		"migration_execution": confidence.Aggregate([]float64{confidence.HighConfidence, completenessScore}),
		"buffer":              riskScore,
		"fixed_components":    confidence.HighConfidence,
		"historical_context":  similarityScore,
	}
}

func recommendations(f rules.ProjectFeatures, a api.RiskAssessment) []string {
	recs := []string{
		"Review the estimate with the delivery team before customer sign-off.",
		fmt.Sprintf("Plan manual review effort of roughly %.0f%% on top of automated migration.", a.ManualReviewPercentage),
	}
	for _, item := range a.HighPriorityRisks {
		recs = append(recs, item.Recommendation)
	}
	if f.FlowCount >= 150 {
		recs = append(recs, "Split the migration into phased batches with per-batch regression gates.")
	}
	return recs
}

var standardAssumptions = []string{
	"Flows are migrated at the universal rate of 5 flows per 2 days.",
	"Customer provides environment access and test data on schedule.",
	"Source artifacts (bar files, ESQL, message sets) are available and buildable.",
	"One migration team works the estate sequentially.",
}

var standardExclusions = []string{
	"Functional changes or flow redesign beyond like-for-like migration.",
	"Hardware procurement and base platform provisioning lead times.",
	"Performance tuning beyond parity with the source environment.",
	"End-user training beyond the knowledge transfer sessions included.",
}
