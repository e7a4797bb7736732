package questionnaire

import "ace-estimator/internal/rules"

// Features maps the questionnaire to the rules engine feature vector.
// The target host platform determines the infrastructure type; a mainframe
// target is treated as on-premise for setup purposes (the mainframe risk
// factor is driven by the SOURCE platform).
func (q *Questionnaire) Features() rules.ProjectFeatures {
	setup := rules.SetupConfigured
	if q.Target.ProductInstallationNeeded {
		setup = rules.SetupNew
	}

	return rules.ProjectFeatures{
		FlowCount:                q.Source.TotalFlows,
		EnvironmentCount:         len(q.Target.Environments),
		Infrastructure:           infrastructureFor(q.Target.HostPlatform),
		HasMessageQueue:          q.Source.HasMQ,
		SetupStatus:              setup,
		SourceVersion:            string(q.Source.ProductVersion),
		HostPlatform:             string(q.Source.HostPlatform),
		HasCustomPlugins:         q.Source.HasCustomPlugins,
		CustomPluginCount:        q.Source.CustomPluginCount,
		IntegrationProtocolCount: len(q.Source.IntegrationProtocols),
		ExternalSystemCount:      len(q.Source.ExternalSystems),
	}
}

func infrastructureFor(p HostPlatform) rules.Infrastructure {
	switch p {
	case PlatformContainer:
		return rules.InfraContainer
	case PlatformCloud:
		return rules.InfraCloud
	case PlatformMainframe, PlatformOnPremise:
		return rules.InfraOnPremise
	default:
		return rules.Infrastructure(p)
	}
}
