package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ace-estimator/internal/estimator"
	"ace-estimator/internal/insight"
	"ace-estimator/internal/questionnaire"
	"ace-estimator/internal/rules"
	contracts "ace-estimator/pkg/api"
)

func newTestRouter() http.Handler {
	advisor := insight.NewRuleAdvisor()
	svc := estimator.NewService(rules.NewEngine(), nil, advisor, zerolog.Nop())
	return NewServer(svc, advisor, nil, nil, nil, zerolog.Nop()).Router()
}

func doRequest(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func reportQuestionnaire() questionnaire.Questionnaire {
	return questionnaire.Questionnaire{
		ProjectName: "Acme IIB to ACE",
		Source: questionnaire.SourceEnvironment{
			ProductVersion: questionnaire.IIBv10,
			HostPlatform:   questionnaire.PlatformOnPremise,
			Environments: []questionnaire.EnvironmentConfig{
				{Name: "PROD", IntegrationNodes: 2, IntegrationServersPerNode: 4},
			},
			HasMQ:      true,
			MQDetails:  &questionnaire.MQDetails{QueueManagersPerNode: 1, QueueManagersInScope: true},
			TotalFlows: 100,
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

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = doRequest(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No history store configured: the deterministic core is still ready.
	rec = doRequest(t, router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ace-estimator")
}

func TestQuickEstimate(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet,
		"/api/v1/estimate/quick?flows=100&environments=3&infrastructure=container&mq=true&setup_status=new", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.QuickEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 80.0, got.Totals.TotalDays)
	assert.Equal(t, 3.0, got.Breakdown.EnvironmentSetup.TimePerEnvironment)
	assert.Equal(t, 20.0, got.Breakdown.FixedComponents.Total)
}

func TestQuickEstimateUnknownInfrastructure(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet,
		"/api/v1/estimate/quick?flows=100&environments=3&infrastructure=gcp", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got contracts.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "infrastructure", got.Field)
	assert.Contains(t, got.Error, "gcp")
}

func TestQuickEstimateMissingFlows(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/estimate/quick", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got contracts.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "flow_count", got.Field)
}

func TestLiveEstimatePartialQuestionnaire(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/estimate/live",
		map[string]any{"source_environment": map[string]any{"total_flows": 50}})
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.LiveEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.IsComplete)
	assert.Contains(t, got.MissingFields, "environments")
	assert.Zero(t, got.TotalDays)
}

func TestLiveEstimateInvalidBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate/live", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullReportEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/estimate/report", reportQuestionnaire())
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.EstimationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Greater(t, got.Totals.TotalDays, 0.0)
	assert.Equal(t, got.Totals.TotalDays, got.Adjusted.FinalDays)
	assert.NotEmpty(t, got.ProjectID)
	assert.NotEmpty(t, got.Assumptions)
}

func TestFullReportRejectsInvalidQuestionnaire(t *testing.T) {
	router := newTestRouter()

	q := reportQuestionnaire()
	q.Source.MQDetails = nil // HasMQ still true

	rec := doRequest(t, router, http.MethodPost, "/api/v1/estimate/report", q)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRiskAssessmentEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/insights/risk-assessment", rules.ProjectFeatures{
		FlowCount:        100,
		EnvironmentCount: 3,
		Infrastructure:   rules.InfraContainer,
		SetupStatus:      rules.SetupNew,
		SourceVersion:    "WMB_v7",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, contracts.RiskHigh, got.OverallRiskLevel)
	assert.NotEmpty(t, got.HighPriorityRisks)
}

func TestInsightsEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/insights?flows=350&source_version=WMB_v6", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []contracts.InsightCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.NotEmpty(t, cards)
}

func TestSimilarProjectsWithoutStore(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/insights/similar-projects?flows=100", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCollectionStatsWithoutStore(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/insights/collection-stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
