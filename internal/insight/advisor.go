// Package insight derives risk assessments and advisory messages from the
// characteristics of a migration project. Everything here is rule-based and
// deterministic: the same feature vector always yields the same assessment.
package insight

import (
	"fmt"

	"ace-estimator/internal/rules"
	"ace-estimator/pkg/api"
)

// Advisor produces risk assessments and questionnaire insights.
type Advisor interface {
	AssessRisks(features rules.ProjectFeatures) api.RiskAssessment
	Insights(features rules.ProjectFeatures) []api.InsightCard
}

// RuleAdvisor is the default Advisor implementation.
type RuleAdvisor struct{}

// NewRuleAdvisor returns the rule-based advisor.
func NewRuleAdvisor() *RuleAdvisor {
	return &RuleAdvisor{}
}

const baseManualReviewPercentage = 20.0

// AssessRisks walks the risk rules and buckets every triggered item by
// priority. The manual review percentage starts at a 20% floor and grows
// with each high or medium priority risk.
func (a *RuleAdvisor) AssessRisks(f rules.ProjectFeatures) api.RiskAssessment {
	assessment := api.RiskAssessment{
		HighPriorityRisks:      []api.RiskItem{},
		MediumPriorityRisks:    []api.RiskItem{},
		LowPriorityRisks:       []api.RiskItem{},
		ManualReviewPercentage: baseManualReviewPercentage,
	}

	for _, item := range a.riskItems(f) {
		switch item.RiskLevel {
		case api.RiskHigh:
			assessment.HighPriorityRisks = append(assessment.HighPriorityRisks, item)
			assessment.ManualReviewPercentage += 10
		case api.RiskMedium:
			assessment.MediumPriorityRisks = append(assessment.MediumPriorityRisks, item)
			assessment.ManualReviewPercentage += 5
		default:
			assessment.LowPriorityRisks = append(assessment.LowPriorityRisks, item)
		}
	}

	assessment.TotalRiskItems = len(assessment.HighPriorityRisks) +
		len(assessment.MediumPriorityRisks) + len(assessment.LowPriorityRisks)
	assessment.OverallRiskLevel = overallLevel(assessment)
	assessment.ConfidenceScore = confidenceScore(assessment)
	if assessment.ManualReviewPercentage > 60 {
		assessment.ManualReviewPercentage = 60
	}

	return assessment
}

func (a *RuleAdvisor) riskItems(f rules.ProjectFeatures) []api.RiskItem {
	var items []api.RiskItem

	if rules.IsLegacySource(f.SourceVersion) {
		items = append(items, api.RiskItem{
			Item:             "Legacy source version (" + f.SourceVersion + ")",
			ImpactDaysRange:  "5-15",
			Reason:           "WMB v6/v7 flows frequently use nodes and ESQL constructs removed in ACE",
			Recommendation:   "Run a full flow inventory and node-compatibility scan before committing to the plan",
			RiskLevel:        api.RiskHigh,
			ConfidenceImpact: 0.15,
		})
	}

	if f.HostPlatform == rules.HostPlatformMainframe {
		items = append(items, api.RiskItem{
			Item:             "Mainframe source platform",
			ImpactDaysRange:  "5-20",
			Reason:           "Mainframe connectivity, EBCDIC handling and change windows slow every migration phase",
			Recommendation:   "Secure mainframe test LPAR access early and schedule connectivity testing first",
			RiskLevel:        api.RiskHigh,
			ConfidenceImpact: 0.15,
		})
	}

	if f.HasCustomPlugins {
		level := api.RiskMedium
		impact := "3-8"
		if f.CustomPluginCount > 3 {
			level = api.RiskHigh
			impact = "8-15"
		}
		items = append(items, api.RiskItem{
			Item:             fmt.Sprintf("Custom plugins (%d)", f.CustomPluginCount),
			ImpactDaysRange:  impact,
			Reason:           "Custom nodes and adapters usually need source-level changes for the target runtime",
			Recommendation:   "Locate plugin source code and verify build toolchain availability up front",
			RiskLevel:        level,
			ConfidenceImpact: 0.10,
		})
	}

	if f.FlowCount > 200 {
		items = append(items, api.RiskItem{
			Item:             fmt.Sprintf("Large flow estate (%d flows)", f.FlowCount),
			ImpactDaysRange:  "5-10",
			Reason:           "Large estates carry a long regression-testing tail and coordination overhead",
			Recommendation:   "Migrate in phased batches with a per-batch regression gate",
			RiskLevel:        api.RiskMedium,
			ConfidenceImpact: 0.05,
		})
	}

	if f.ExternalSystemCount > 5 {
		items = append(items, api.RiskItem{
			Item:             fmt.Sprintf("Many external systems (%d)", f.ExternalSystemCount),
			ImpactDaysRange:  "3-8",
			Reason:           "Every downstream system needs connectivity retesting after cutover",
			Recommendation:   "Build an interface inventory and agree test windows with each system owner",
			RiskLevel:        api.RiskMedium,
			ConfidenceImpact: 0.05,
		})
	}

	if f.Infrastructure == rules.InfraContainer {
		items = append(items, api.RiskItem{
			Item:             "Container target infrastructure",
			ImpactDaysRange:  "2-5",
			Reason:           "Network policies, persistent volumes and registry access are common first-deployment blockers",
			Recommendation:   "Stand up one end-to-end containerized flow early to flush out platform issues",
			RiskLevel:        api.RiskLow,
			ConfidenceImpact: 0.03,
		})
	}

	if f.IntegrationProtocolCount > 3 {
		items = append(items, api.RiskItem{
			Item:             fmt.Sprintf("Multiple integration protocols (%d)", f.IntegrationProtocolCount),
			ImpactDaysRange:  "1-4",
			Reason:           "Each protocol family needs its own configuration and test harness",
			Recommendation:   "Group migration batches by protocol to reuse test setups",
			RiskLevel:        api.RiskLow,
			ConfidenceImpact: 0.02,
		})
	}

	return items
}

func overallLevel(a api.RiskAssessment) string {
	switch {
	case len(a.HighPriorityRisks) > 0:
		return api.RiskHigh
	case len(a.MediumPriorityRisks) >= 2:
		return api.RiskMedium
	case len(a.MediumPriorityRisks) > 0 || len(a.LowPriorityRisks) > 1:
		return api.RiskMedium
	default:
		return api.RiskLow
	}
}

// confidenceScore starts at 0.95 and loses each item's confidence impact,
// floored at 0.5.
func confidenceScore(a api.RiskAssessment) float64 {
	score := 0.95
	for _, bucket := range [][]api.RiskItem{a.HighPriorityRisks, a.MediumPriorityRisks, a.LowPriorityRisks} {
		for _, item := range bucket {
			score -= item.ConfidenceImpact
		}
	}
	if score < 0.5 {
		score = 0.5
	}
	return score
}

// Insights returns short advisory cards for the questionnaire UI, keyed off
// whatever features have been filled in so far.
func (a *RuleAdvisor) Insights(f rules.ProjectFeatures) []api.InsightCard {
	cards := []api.InsightCard{
		{
			Title:    "Universal migration rate",
			Message:  rules.MigrationRateDescription,
			Severity: api.SeverityInfo,
			Icon:     "speed",
		},
	}

	if f.FlowCount >= 300 {
		cards = append(cards, api.InsightCard{
			Title:    "Very large estate",
			Message:  fmt.Sprintf("%d flows puts this project in the highest contingency tier. Consider splitting the estate into independent workstreams.", f.FlowCount),
			Severity: api.SeverityWarning,
			Icon:     "layers",
		})
	}

	if rules.IsLegacySource(f.SourceVersion) {
		cards = append(cards, api.InsightCard{
			Title:    "Legacy source detected",
			Message:  "WMB v6/v7 sources add a 15% contingency factor. A node-compatibility scan before estimation sign-off is strongly recommended.",
			Severity: api.SeverityWarning,
			Icon:     "history",
		})
	}

	if f.Infrastructure == rules.InfraContainer {
		cards = append(cards, api.InsightCard{
			Title:    "Container target",
			Message:  "Container environments take roughly three days each to set up, versus one for a standard target.",
			Severity: api.SeverityInfo,
			Icon:     "cloud",
		})
	}

	if f.HasCustomPlugins {
		cards = append(cards, api.InsightCard{
			Title:    "Custom plugins",
			Message:  "Custom plugins add contingency and complexity. Confirm plugin source code is available before the project starts.",
			Severity: api.SeverityWarning,
			Icon:     "extension",
		})
	}

	return cards
}
