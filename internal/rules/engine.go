// Package rules implements the deterministic estimation rules engine for
// IBM ACE migration projects (WMB/IIB to ACE).
//
// The engine is pure and stateless: every method is a deterministic function
// of its inputs, with no I/O and no hidden state. All day amounts are carried
// as decimals and rounded to 2 decimal places at each subtotal boundary so
// that outputs reproduce the historical reference numbers exactly.
//
// Team band has been removed from all calculations. Estimation is based
// purely on flow count, environment configuration, infrastructure, and
// project-specific complexity factors.
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	two       = decimal.NewFromInt(2)
	five      = decimal.NewFromInt(5)
	daysWeek  = decimal.NewFromInt(5)
	daysMonth = decimal.NewFromInt(22)

	// Environment setup rates (days per environment).
	envRateContainer = decimal.NewFromInt(3)
	envRateMQ        = decimal.NewFromFloat(1.5)
	envRateDefault   = decimal.NewFromInt(1)

	// Target configuration times.
	targetSetupNew        = decimal.NewFromInt(5)
	targetSetupConfigured = decimal.NewFromFloat(2.5)

	// Buffer complexity factor increments.
	factorCustomPlugins  = decimal.NewFromFloat(0.10)
	factorLegacySource   = decimal.NewFromFloat(0.15)
	factorMainframe      = decimal.NewFromFloat(0.20)
	factorManySystems    = decimal.NewFromFloat(0.10)
	bufferMultiplierBase = decimal.NewFromInt(1)
	bufferMultiplierCap  = decimal.NewFromFloat(1.5)

	// Reporting complexity multiplier parameters.
	pluginFactorPerUnit   = decimal.NewFromFloat(0.05)
	pluginFactorCap       = decimal.NewFromFloat(0.30)
	protocolFactorPerUnit = decimal.NewFromFloat(0.03)
	systemFactorPerUnit   = decimal.NewFromFloat(0.02)
)

// MigrationRateDescription documents the universal execution rate.
const MigrationRateDescription = "Universal rate: 5 flows per 2 days"

// Engine is the deterministic estimation calculator. It holds no state and
// is safe for concurrent use.
type Engine struct{}

// NewEngine returns a rules engine. Construct once and inject where needed.
func NewEngine() *Engine { return &Engine{} }

// EnvironmentSetup is the environment setup time component.
type EnvironmentSetup struct {
	TimePerEnvironment decimal.Decimal `json:"time_per_environment"`
	EnvironmentCount   int             `json:"environment_count"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Infrastructure     Infrastructure  `json:"infrastructure"`
	HasMessageQueue    bool            `json:"has_message_queue"`
}

// TargetSetup is the target configuration time component.
type TargetSetup struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	SetupStatus SetupStatus     `json:"setup_status"`
}

// MigrationExecution is the migration + testing time component.
type MigrationExecution struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	FlowCount       int             `json:"flow_count"`
	FlowsPerBatch   int             `json:"flows_per_batch"`
	DaysPerBatch    int             `json:"days_per_batch"`
	RateDescription string          `json:"rate_description"`
}

// Buffer is the contingency component, scaled by project complexity.
type Buffer struct {
	BaseBuffer           decimal.Decimal `json:"base_buffer"`
	ComplexityMultiplier decimal.Decimal `json:"complexity_multiplier"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ContributingFactors  []string        `json:"contributing_factors"`
}

// FixedComponents are the post-migration support times. They never vary.
type FixedComponents struct {
	UATSupport        decimal.Decimal `json:"uat_support"`
	GoLiveSupport     decimal.Decimal `json:"golive_support"`
	KnowledgeTransfer decimal.Decimal `json:"knowledge_transfer"`
}

// Total returns the sum of all fixed components (always 20 days).
func (f FixedComponents) Total() decimal.Decimal {
	return f.UATSupport.Add(f.GoLiveSupport).Add(f.KnowledgeTransfer)
}

// Complexity is the finer-grained reporting multiplier. It is surfaced as
// metadata for downstream confidence scoring and does not scale total days.
// It is distinct from the buffer's capped multiplier.
type Complexity struct {
	Multiplier          decimal.Decimal `json:"multiplier"`
	Base                decimal.Decimal `json:"base"`
	Additional          decimal.Decimal `json:"additional"`
	ContributingFactors []string        `json:"contributing_factors"`
}

// EstimateBreakdown is the full set of independently computed components.
type EstimateBreakdown struct {
	EnvironmentSetup   EnvironmentSetup   `json:"environment_setup"`
	TargetSetup        TargetSetup        `json:"target_setup"`
	MigrationExecution MigrationExecution `json:"migration_execution"`
	Buffer             Buffer             `json:"buffer"`
	FixedComponents    FixedComponents    `json:"fixed_components"`
	Complexity         Complexity         `json:"complexity"`
}

// EstimateTotals are the derived totals across all additive components.
type EstimateTotals struct {
	TotalDays   decimal.Decimal `json:"total_days"`
	TotalWeeks  decimal.Decimal `json:"total_weeks"`
	TotalMonths decimal.Decimal `json:"total_months"`
}

// CalculateEnvironmentSetupTime computes environment setup time. Precedence
// is strict and ordered: container infrastructure wins over MQ, MQ wins over
// the base rate.
func (e *Engine) CalculateEnvironmentSetupTime(envCount int, infrastructure Infrastructure, hasMQ bool) EnvironmentSetup {
	var rate decimal.Decimal
	switch {
	case infrastructure == InfraContainer:
		rate = envRateContainer
	case hasMQ:
		rate = envRateMQ
	default:
		rate = envRateDefault
	}

	return EnvironmentSetup{
		TimePerEnvironment: rate,
		EnvironmentCount:   envCount,
		Subtotal:           rate.Mul(decimal.NewFromInt(int64(envCount))).Round(2),
		Infrastructure:     infrastructure,
		HasMessageQueue:    hasMQ,
	}
}

// CalculateTargetSetupTime computes target configuration time: 5 days for a
// new setup, 2.5 days when the target is already configured.
func (e *Engine) CalculateTargetSetupTime(status SetupStatus) TargetSetup {
	t := targetSetupConfigured
	if status == SetupNew {
		t = targetSetupNew
	}
	return TargetSetup{Subtotal: t, SetupStatus: status}
}

// CalculateMigrationExecutionTime computes migration + testing time at the
// universal rate of 5 flows per 2 days, applied as a continuous ratio with
// no batching and no tiering.
func (e *Engine) CalculateMigrationExecutionTime(flowCount int) MigrationExecution {
	subtotal := decimal.NewFromInt(int64(flowCount)).Div(five).Mul(two).Round(2)
	return MigrationExecution{
		Subtotal:        subtotal,
		FlowCount:       flowCount,
		FlowsPerBatch:   5,
		DaysPerBatch:    2,
		RateDescription: MigrationRateDescription,
	}
}

// CalculateBuffer computes the contingency buffer: a base tier by project
// size, scaled by an additive complexity multiplier capped at 1.5. The
// contributing factor labels record the raw factors even when the cap
// applies.
func (e *Engine) CalculateBuffer(flowCount int, hasCustomPlugins, legacySource, mainframeSource, manyExternalSystems bool) Buffer {
	var base int64
	switch {
	case flowCount < 50:
		base = 5
	case flowCount < 150:
		base = 6
	case flowCount < 300:
		base = 7
	default:
		base = 8
	}
	baseBuffer := decimal.NewFromInt(base)

	multiplier := bufferMultiplierBase
	var factors []string

	if hasCustomPlugins {
		multiplier = multiplier.Add(factorCustomPlugins)
		factors = append(factors, "Custom plugins: +10%")
	}
	if legacySource {
		multiplier = multiplier.Add(factorLegacySource)
		factors = append(factors, "Legacy source (WMB v6/v7): +15%")
	}
	if mainframeSource {
		multiplier = multiplier.Add(factorMainframe)
		factors = append(factors, "Mainframe source: +20%")
	}
	if manyExternalSystems {
		multiplier = multiplier.Add(factorManySystems)
		factors = append(factors, "Many external systems (>5): +10%")
	}

	if multiplier.GreaterThan(bufferMultiplierCap) {
		multiplier = bufferMultiplierCap
	}
	multiplier = multiplier.Round(2)

	return Buffer{
		BaseBuffer:           baseBuffer,
		ComplexityMultiplier: multiplier,
		Subtotal:             baseBuffer.Mul(multiplier).Round(2),
		ContributingFactors:  factors,
	}
}

// GetFixedComponents returns the constant post-migration support times:
// UAT support 10 days, go-live support 5 days, knowledge transfer 5 days.
func (e *Engine) GetFixedComponents() FixedComponents {
	return FixedComponents{
		UATSupport:        decimal.NewFromInt(10),
		GoLiveSupport:     decimal.NewFromInt(5),
		KnowledgeTransfer: decimal.NewFromInt(5),
	}
}

// CalculateComplexityMultiplier computes the uncapped reporting multiplier
// from the fine-grained plugin, protocol, and external-system counts.
func (e *Engine) CalculateComplexityMultiplier(hasCustomPlugins bool, customPluginCount, integrationProtocolCount, externalSystemCount int) Complexity {
	multiplier := decimal.NewFromInt(1)
	var factors []string

	if hasCustomPlugins {
		pluginFactor := pluginFactorPerUnit.Mul(decimal.NewFromInt(int64(customPluginCount)))
		if pluginFactor.GreaterThan(pluginFactorCap) {
			pluginFactor = pluginFactorCap
		}
		multiplier = multiplier.Add(pluginFactor)
		factors = append(factors, fmt.Sprintf("Custom plugins: +%s%%", pluginFactor.Mul(decimal.NewFromInt(100)).Round(0)))
	}

	if integrationProtocolCount > 3 {
		protocolFactor := protocolFactorPerUnit.Mul(decimal.NewFromInt(int64(integrationProtocolCount - 3)))
		multiplier = multiplier.Add(protocolFactor)
		factors = append(factors, fmt.Sprintf("Multiple protocols: +%s%%", protocolFactor.Mul(decimal.NewFromInt(100)).Round(0)))
	}

	if externalSystemCount > 5 {
		systemFactor := systemFactorPerUnit.Mul(decimal.NewFromInt(int64(externalSystemCount - 5)))
		multiplier = multiplier.Add(systemFactor)
		factors = append(factors, fmt.Sprintf("Multiple systems: +%s%%", systemFactor.Mul(decimal.NewFromInt(100)).Round(0)))
	}

	multiplier = multiplier.Round(3)

	return Complexity{
		Multiplier:          multiplier,
		Base:                decimal.NewFromInt(1),
		Additional:          multiplier.Sub(decimal.NewFromInt(1)).Round(3),
		ContributingFactors: factors,
	}
}

// CalculateTotalEstimate is the master composition. It validates the feature
// vector, computes every component, and sums the five additive subtotals:
//
//	total = environment setup + target config + migration execution + buffer + fixed (20)
//
// The reporting complexity multiplier is computed but never applied to the
// total; it is metadata for downstream confidence scoring.
func (e *Engine) CalculateTotalEstimate(f ProjectFeatures) (EstimateBreakdown, EstimateTotals, error) {
	if err := f.Validate(); err != nil {
		return EstimateBreakdown{}, EstimateTotals{}, err
	}

	envSetup := e.CalculateEnvironmentSetupTime(f.EnvironmentCount, f.Infrastructure, f.HasMessageQueue)
	targetSetup := e.CalculateTargetSetupTime(f.SetupStatus)
	execution := e.CalculateMigrationExecutionTime(f.FlowCount)

	legacySource := IsLegacySource(f.SourceVersion)
	mainframeSource := f.HostPlatform == HostPlatformMainframe
	manyExternalSystems := f.ExternalSystemCount > 5

	buffer := e.CalculateBuffer(f.FlowCount, f.HasCustomPlugins, legacySource, mainframeSource, manyExternalSystems)
	fixed := e.GetFixedComponents()
	complexity := e.CalculateComplexityMultiplier(f.HasCustomPlugins, f.CustomPluginCount, f.IntegrationProtocolCount, f.ExternalSystemCount)

	breakdown := EstimateBreakdown{
		EnvironmentSetup:   envSetup,
		TargetSetup:        targetSetup,
		MigrationExecution: execution,
		Buffer:             buffer,
		FixedComponents:    fixed,
		Complexity:         complexity,
	}

	if err := checkInvariants(breakdown); err != nil {
		return EstimateBreakdown{}, EstimateTotals{}, err
	}

	totalDays := envSetup.Subtotal.
		Add(targetSetup.Subtotal).
		Add(execution.Subtotal).
		Add(buffer.Subtotal).
		Add(fixed.Total()).
		Round(2)

	totals := EstimateTotals{
		TotalDays:   totalDays,
		TotalWeeks:  totalDays.Div(daysWeek).Round(2),
		TotalMonths: totalDays.Div(daysMonth).Round(2),
	}

	return breakdown, totals, nil
}

// checkInvariants verifies the arithmetic invariants after composition.
// A failure here is a logic defect, not bad input.
func checkInvariants(b EstimateBreakdown) error {
	subtotals := map[string]decimal.Decimal{
		"environment_setup":   b.EnvironmentSetup.Subtotal,
		"target_setup":        b.TargetSetup.Subtotal,
		"migration_execution": b.MigrationExecution.Subtotal,
		"buffer":              b.Buffer.Subtotal,
		"fixed_components":    b.FixedComponents.Total(),
	}
	for name, v := range subtotals {
		if v.IsNegative() {
			return &InvariantViolation{Component: name, Message: "negative subtotal " + v.String()}
		}
	}
	m := b.Buffer.ComplexityMultiplier
	if m.LessThan(bufferMultiplierBase) || m.GreaterThan(bufferMultiplierCap) {
		return &InvariantViolation{Component: "buffer", Message: "complexity multiplier out of range: " + m.String()}
	}
	return nil
}
