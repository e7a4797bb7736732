package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ace-estimator/internal/rules"
	"ace-estimator/pkg/api"
)

func simpleFeatures() rules.ProjectFeatures {
	return rules.ProjectFeatures{
		FlowCount:        40,
		EnvironmentCount: 2,
		Infrastructure:   rules.InfraOnPremise,
		SetupStatus:      rules.SetupConfigured,
		SourceVersion:    "IIB_v10",
	}
}

func TestAssessRisksSimpleProjectIsLowRisk(t *testing.T) {
	a := NewRuleAdvisor()

	got := a.AssessRisks(simpleFeatures())

	assert.Equal(t, api.RiskLow, got.OverallRiskLevel)
	assert.Empty(t, got.HighPriorityRisks)
	assert.Equal(t, 0, got.TotalRiskItems)
	assert.Equal(t, 20.0, got.ManualReviewPercentage)
	assert.InDelta(t, 0.95, got.ConfidenceScore, 1e-9)
}

func TestAssessRisksLegacyMainframeIsHighRisk(t *testing.T) {
	a := NewRuleAdvisor()

	f := simpleFeatures()
	f.SourceVersion = "WMB_v7"
	f.HostPlatform = rules.HostPlatformMainframe

	got := a.AssessRisks(f)

	assert.Equal(t, api.RiskHigh, got.OverallRiskLevel)
	require.Len(t, got.HighPriorityRisks, 2)
	assert.Equal(t, 40.0, got.ManualReviewPercentage)
	assert.InDelta(t, 0.65, got.ConfidenceScore, 1e-9)
}

func TestAssessRisksPluginCountEscalates(t *testing.T) {
	a := NewRuleAdvisor()

	f := simpleFeatures()
	f.HasCustomPlugins = true
	f.CustomPluginCount = 2
	assert.Len(t, a.AssessRisks(f).MediumPriorityRisks, 1)

	f.CustomPluginCount = 5
	got := a.AssessRisks(f)
	assert.Len(t, got.HighPriorityRisks, 1)
	assert.Empty(t, got.MediumPriorityRisks)
}

func TestAssessRisksDeterministic(t *testing.T) {
	a := NewRuleAdvisor()

	f := simpleFeatures()
	f.FlowCount = 250
	f.ExternalSystemCount = 8
	f.Infrastructure = rules.InfraContainer

	assert.Equal(t, a.AssessRisks(f), a.AssessRisks(f))
}

func TestAssessRisksManualReviewCapped(t *testing.T) {
	a := NewRuleAdvisor()

	f := rules.ProjectFeatures{
		FlowCount:                400,
		EnvironmentCount:         5,
		Infrastructure:           rules.InfraContainer,
		SetupStatus:              rules.SetupNew,
		SourceVersion:            "WMB_v6",
		HostPlatform:             rules.HostPlatformMainframe,
		HasCustomPlugins:         true,
		CustomPluginCount:        6,
		IntegrationProtocolCount: 6,
		ExternalSystemCount:      9,
	}

	got := a.AssessRisks(f)
	assert.LessOrEqual(t, got.ManualReviewPercentage, 60.0)
	assert.GreaterOrEqual(t, got.ConfidenceScore, 0.5)
	assert.Equal(t, api.RiskHigh, got.OverallRiskLevel)
}

func TestInsightsAlwaysIncludeRateCard(t *testing.T) {
	a := NewRuleAdvisor()

	cards := a.Insights(rules.ProjectFeatures{})
	require.NotEmpty(t, cards)
	assert.Equal(t, "Universal migration rate", cards[0].Title)
	assert.Equal(t, api.SeverityInfo, cards[0].Severity)
}

func TestInsightsWarnOnLegacyAndPlugins(t *testing.T) {
	a := NewRuleAdvisor()

	f := simpleFeatures()
	f.SourceVersion = "WMB_v6"
	f.HasCustomPlugins = true

	cards := a.Insights(f)

	var titles []string
	for _, c := range cards {
		titles = append(titles, c.Title)
	}
	assert.Contains(t, titles, "Legacy source detected")
	assert.Contains(t, titles, "Custom plugins")
}
