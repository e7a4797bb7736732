package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ace-estimator/internal/rules"
)

func validSubmission() *Questionnaire {
	return &Questionnaire{
		ProjectName: "Acme IIB to ACE",
		Source: SourceEnvironment{
			ProductVersion: IIBv10,
			HostPlatform:   PlatformMainframe,
			Environments: []EnvironmentConfig{
				{Name: "PROD", IntegrationNodes: 2, IntegrationServersPerNode: 4},
			},
			HasMQ:                true,
			MQDetails:            &MQDetails{QueueManagersPerNode: 1, QueueManagersInScope: true},
			ExternalSystems:      []string{"SAP", "Salesforce", "Oracle"},
			IntegrationProtocols: []string{"MQ", "HTTP", "SOAP", "File"},
			TotalFlows:           120,
			HasCustomPlugins:     true,
			CustomPluginCount:    2,
		},
		Target: TargetEnvironment{
			ProductVersion:            "ACE_v12",
			HostPlatform:              PlatformContainer,
			MigrationType:             MigrationParallel,
			ProductInstallationNeeded: true,
			Environments: []EnvironmentConfig{
				{Name: "DEV", IntegrationNodes: 1, IntegrationServersPerNode: 2},
				{Name: "PROD", IntegrationNodes: 2, IntegrationServersPerNode: 4},
			},
			ApplicationsInScope: 3,
		},
		General: GeneralInfo{
			MigrationDrivers: []string{"end_of_support"},
		},
	}
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	require.NoError(t, validSubmission().Validate())
}

func TestValidateRequiresMQDetailsWhenMQInUse(t *testing.T) {
	q := validSubmission()
	q.Source.MQDetails = nil

	err := q.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQDetails")
}

func TestValidateMQDetailsOptionalWithoutMQ(t *testing.T) {
	q := validSubmission()
	q.Source.HasMQ = false
	q.Source.MQDetails = nil

	require.NoError(t, q.Validate())
}

func TestValidateRejectsUnknownProductVersion(t *testing.T) {
	q := validSubmission()
	q.Source.ProductVersion = "WMB_v5"

	require.Error(t, q.Validate())
}

func TestValidateRejectsZeroFlows(t *testing.T) {
	q := validSubmission()
	q.Source.TotalFlows = 0

	require.Error(t, q.Validate())
}

func TestValidateRequiresEnvironments(t *testing.T) {
	q := validSubmission()
	q.Target.Environments = nil

	require.Error(t, q.Validate())
}

func TestFeaturesMapping(t *testing.T) {
	f := validSubmission().Features()

	assert.Equal(t, 120, f.FlowCount)
	assert.Equal(t, 2, f.EnvironmentCount)
	assert.Equal(t, rules.InfraContainer, f.Infrastructure)
	assert.True(t, f.HasMessageQueue)
	assert.Equal(t, rules.SetupNew, f.SetupStatus)
	assert.Equal(t, "IIB_v10", f.SourceVersion)
	assert.Equal(t, rules.HostPlatformMainframe, f.HostPlatform)
	assert.True(t, f.HasCustomPlugins)
	assert.Equal(t, 2, f.CustomPluginCount)
	assert.Equal(t, 4, f.IntegrationProtocolCount)
	assert.Equal(t, 3, f.ExternalSystemCount)
}

func TestFeaturesMainframeTargetUsesOnPremiseRates(t *testing.T) {
	q := validSubmission()
	q.Target.HostPlatform = PlatformMainframe

	f := q.Features()
	assert.Equal(t, rules.InfraOnPremise, f.Infrastructure)
}

func TestFeaturesConfiguredTarget(t *testing.T) {
	q := validSubmission()
	q.Target.ProductInstallationNeeded = false

	assert.Equal(t, rules.SetupConfigured, q.Features().SetupStatus)
}
