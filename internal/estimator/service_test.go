package estimator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ace-estimator/internal/history"
	"ace-estimator/internal/insight"
	"ace-estimator/internal/questionnaire"
	"ace-estimator/internal/rules"
	"ace-estimator/pkg/confidence"
)

type stubRetriever struct {
	matches []history.Match
	err     error
}

func (s *stubRetriever) SimilarProjects(_ context.Context, _ history.Profile, _ int) ([]history.Match, error) {
	return s.matches, s.err
}

func newTestService(r history.Retriever) *Service {
	return NewService(rules.NewEngine(), r, insight.NewRuleAdvisor(), zerolog.Nop())
}

func validQuestionnaire() *questionnaire.Questionnaire {
	return &questionnaire.Questionnaire{
		ProjectName: "Acme IIB to ACE",
		Source: questionnaire.SourceEnvironment{
			ProductVersion: questionnaire.IIBv10,
			HostPlatform:   questionnaire.PlatformOnPremise,
			Environments: []questionnaire.EnvironmentConfig{
				{Name: "PROD", IntegrationNodes: 2, IntegrationServersPerNode: 4},
			},
			HasMQ:                true,
			MQDetails:            &questionnaire.MQDetails{QueueManagersPerNode: 1, QueueManagersInScope: true},
			ExternalSystems:      []string{"SAP", "Salesforce"},
			IntegrationProtocols: []string{"MQ", "HTTP"},
			TotalFlows:           100,
		},
		Target: questionnaire.TargetEnvironment{
			ProductVersion:            "ACE_v12",
			HostPlatform:              questionnaire.PlatformContainer,
			MigrationType:             questionnaire.MigrationParallel,
			ProductInstallationNeeded: true,
			Environments: []questionnaire.EnvironmentConfig{
				{Name: "DEV", IntegrationNodes: 1, IntegrationServersPerNode: 2},
				{Name: "TEST", IntegrationNodes: 1, IntegrationServersPerNode: 2},
				{Name: "PROD", IntegrationNodes: 2, IntegrationServersPerNode: 4},
			},
			ApplicationsInScope: 5,
		},
		General: questionnaire.GeneralInfo{
			MigrationDrivers: []string{"end_of_support"},
		},
	}
}

func TestQuickEstimate(t *testing.T) {
	svc := newTestService(nil)

	got, err := svc.QuickEstimate(rules.ProjectFeatures{
		FlowCount:        100,
		EnvironmentCount: 3,
		Infrastructure:   rules.InfraContainer,
		HasMessageQueue:  true,
		SetupStatus:      rules.SetupNew,
	})
	require.NoError(t, err)

	// 9 (env) + 5 (target) + 40 (execution) + 6 (buffer) + 20 (fixed)
	assert.Equal(t, 80.0, got.Totals.TotalDays)
	assert.Equal(t, 16.0, got.Totals.TotalWeeks)
	assert.Equal(t, 20.0, got.Breakdown.FixedComponents.Total)
}

func TestQuickEstimateValidationError(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.QuickEstimate(rules.ProjectFeatures{FlowCount: 0})
	var verr *rules.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "flow_count", verr.Field)
}

func TestLiveEstimateMissingFields(t *testing.T) {
	svc := newTestService(nil)

	got := svc.LiveEstimate(&questionnaire.Questionnaire{})

	assert.False(t, got.IsComplete)
	assert.Zero(t, got.TotalDays)
	assert.ElementsMatch(t, []string{"total_flows", "environments", "infrastructure"}, got.MissingFields)
	assert.Equal(t, confidence.LowConfidence, got.Confidence)
	assert.Equal(t, confidence.LevelMedium, got.ConfidenceLevel)
}

func TestLiveEstimateComplete(t *testing.T) {
	svc := newTestService(nil)

	got := svc.LiveEstimate(validQuestionnaire())

	assert.True(t, got.IsComplete)
	assert.Empty(t, got.MissingFields)
	assert.Greater(t, got.TotalDays, 0.0)
	assert.Len(t, got.Breakdown, 5)
	assert.GreaterOrEqual(t, got.Confidence, confidence.LowConfidence)
	// All tracked fields are filled in, so the preview is high confidence.
	assert.Equal(t, 1.0, got.Confidence)
}

func TestFullReportWithoutRetriever(t *testing.T) {
	svc := newTestService(nil)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.Zero(t, report.SimilarProjectsCount)
	assert.Equal(t, report.Totals.TotalDays, report.Adjusted.FinalDays)
	assert.False(t, report.Adjusted.AdjustmentCapped)
	assert.NotEmpty(t, report.ProjectID)
	assert.NotEmpty(t, report.Recommendations)
	assert.NotEmpty(t, report.Assumptions)
	assert.NotEmpty(t, report.Exclusions)
}

func TestFullReportAdjustmentFollowsCorpusVariance(t *testing.T) {
	retriever := &stubRetriever{matches: []history.Match{
		{Project: history.Project{ID: "PROJ_A", VariancePercentage: 10}, SimilarityScore: 0.9},
		{Project: history.Project{ID: "PROJ_B", VariancePercentage: 10}, SimilarityScore: 0.8},
	}}
	svc := newTestService(retriever)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.Equal(t, 2, report.SimilarProjectsCount)
	assert.InDelta(t, report.Totals.TotalDays*1.10, report.Adjusted.FinalDays, 0.01)
	assert.False(t, report.Adjusted.AdjustmentCapped)
	assert.Equal(t, []string{"PROJ_A", "PROJ_B"}, report.Adjusted.SimilarProjectsReferenced)
}

func TestFullReportAdjustmentCappedHigh(t *testing.T) {
	retriever := &stubRetriever{matches: []history.Match{
		{Project: history.Project{ID: "PROJ_A", VariancePercentage: 50}, SimilarityScore: 0.9},
	}}
	svc := newTestService(retriever)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.True(t, report.Adjusted.AdjustmentCapped)
	assert.InDelta(t, report.Totals.TotalDays*1.20, report.Adjusted.FinalDays, 0.01)
}

func TestFullReportAdjustmentCappedLow(t *testing.T) {
	retriever := &stubRetriever{matches: []history.Match{
		{Project: history.Project{ID: "PROJ_A", VariancePercentage: -60}, SimilarityScore: 0.9},
	}}
	svc := newTestService(retriever)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.True(t, report.Adjusted.AdjustmentCapped)
	assert.InDelta(t, report.Totals.TotalDays*0.80, report.Adjusted.FinalDays, 0.01)
}

func TestFullReportSurvivesRetrieverFailure(t *testing.T) {
	retriever := &stubRetriever{err: assert.AnError}
	svc := newTestService(retriever)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.Zero(t, report.SimilarProjectsCount)
	assert.Equal(t, report.Totals.TotalDays, report.Adjusted.FinalDays)
}

func TestFullReportRejectsInvalidQuestionnaire(t *testing.T) {
	svc := newTestService(nil)

	q := validQuestionnaire()
	q.Source.MQDetails = nil // HasMQ is still true

	_, err := svc.FullReport(context.Background(), q)
	require.Error(t, err)
}

func TestFullReportConfidenceBlend(t *testing.T) {
	retriever := &stubRetriever{matches: []history.Match{
		{Project: history.Project{ID: "PROJ_A", VariancePercentage: 5}, SimilarityScore: 0.85},
	}}
	svc := newTestService(retriever)

	report, err := svc.FullReport(context.Background(), validQuestionnaire())
	require.NoError(t, err)

	assert.Greater(t, report.OverallConfidence, 0.0)
	assert.LessOrEqual(t, report.OverallConfidence, 1.0)
	assert.Contains(t, report.ConfidenceByComponent, "buffer")
	assert.Contains(t, report.ConfidenceByComponent, "historical_context")
	assert.InDelta(t, 0.85, report.ConfidenceByComponent["historical_context"], 1e-9)
}
