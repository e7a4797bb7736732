package estimator

import (
	"ace-estimator/internal/history"
	"ace-estimator/internal/rules"
	"ace-estimator/pkg/api"
)

// toAPIBreakdown converts the engine's decimal breakdown to the float
// transport form. Conversion happens once, at the service boundary.
func toAPIBreakdown(b rules.EstimateBreakdown) api.Breakdown {
	return api.Breakdown{
		EnvironmentSetup: api.EnvironmentSetup{
			TimePerEnvironment: b.EnvironmentSetup.TimePerEnvironment.InexactFloat64(),
			EnvironmentCount:   b.EnvironmentSetup.EnvironmentCount,
			Subtotal:           b.EnvironmentSetup.Subtotal.InexactFloat64(),
			Infrastructure:     string(b.EnvironmentSetup.Infrastructure),
			HasMessageQueue:    b.EnvironmentSetup.HasMessageQueue,
		},
		TargetSetup: api.TargetSetup{
			Subtotal:    b.TargetSetup.Subtotal.InexactFloat64(),
			SetupStatus: string(b.TargetSetup.SetupStatus),
		},
		MigrationExecution: api.MigrationExecution{
			Subtotal:        b.MigrationExecution.Subtotal.InexactFloat64(),
			FlowCount:       b.MigrationExecution.FlowCount,
			FlowsPerBatch:   b.MigrationExecution.FlowsPerBatch,
			DaysPerBatch:    b.MigrationExecution.DaysPerBatch,
			RateDescription: b.MigrationExecution.RateDescription,
		},
		Buffer: api.Buffer{
			BaseBuffer:           b.Buffer.BaseBuffer.InexactFloat64(),
			ComplexityMultiplier: b.Buffer.ComplexityMultiplier.InexactFloat64(),
			Subtotal:             b.Buffer.Subtotal.InexactFloat64(),
			ContributingFactors:  b.Buffer.ContributingFactors,
		},
		FixedComponents: api.FixedComponents{
			UATSupport:        b.FixedComponents.UATSupport.InexactFloat64(),
			GoLiveSupport:     b.FixedComponents.GoLiveSupport.InexactFloat64(),
			KnowledgeTransfer: b.FixedComponents.KnowledgeTransfer.InexactFloat64(),
			Total:             b.FixedComponents.Total().InexactFloat64(),
		},
		Complexity: api.Complexity{
			Multiplier:          b.Complexity.Multiplier.InexactFloat64(),
			Base:                b.Complexity.Base.InexactFloat64(),
			Additional:          b.Complexity.Additional.InexactFloat64(),
			ContributingFactors: b.Complexity.ContributingFactors,
		},
	}
}

func toAPITotals(t rules.EstimateTotals) api.Totals {
	return api.Totals{
		TotalDays:   t.TotalDays.InexactFloat64(),
		TotalWeeks:  t.TotalWeeks.InexactFloat64(),
		TotalMonths: t.TotalMonths.InexactFloat64(),
	}
}

func toAPISimilarProjects(matches []history.Match) []api.SimilarProject {
	out := make([]api.SimilarProject, 0, len(matches))
	for _, m := range matches {
		out = append(out, api.SimilarProject{
			ProjectID:          m.ID,
			SourceVersion:      m.SourceVersion,
			TargetVersion:      m.TargetVersion,
			FlowCount:          m.FlowCount,
			Infrastructure:     m.Infrastructure,
			EstimatedDays:      m.EstimatedDays,
			ActualDays:         m.ActualDays,
			VariancePercentage: m.VariancePercentage,
			SimilarityScore:    m.SimilarityScore,
			IssuesEncountered:  m.IssuesEncountered,
			LessonsLearned:     m.LessonsLearned,
			ComplexityScore:    m.ComplexityScore,
		})
	}
	return out
}
