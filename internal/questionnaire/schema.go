// Package questionnaire defines the typed questionnaire submitted by the
// customer and its mapping to the rules engine feature vector. Validation
// happens once at this boundary; downstream code receives well-formed data.
package questionnaire

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ProductVersion is a supported WMB/IIB/ACE product version.
type ProductVersion string

const (
	WMBv6  ProductVersion = "WMB_v6"
	WMBv7  ProductVersion = "WMB_v7"
	WMBv8  ProductVersion = "WMB_v8"
	IIBv9  ProductVersion = "IIB_v9"
	IIBv10 ProductVersion = "IIB_v10"
	ACEv11 ProductVersion = "ACE_v11"
	ACEv12 ProductVersion = "ACE_v12"
)

// HostPlatform is where an environment runs.
type HostPlatform string

const (
	PlatformOnPremise HostPlatform = "on_premise"
	PlatformCloud     HostPlatform = "cloud"
	PlatformMainframe HostPlatform = "mainframe"
	PlatformContainer HostPlatform = "container"
)

// MigrationType distinguishes parallel from in-place migrations.
type MigrationType string

const (
	MigrationParallel MigrationType = "parallel"
	MigrationInPlace  MigrationType = "in_place"
)

// EnvironmentConfig describes a single deployment environment.
type EnvironmentConfig struct {
	Name                      string `json:"name" validate:"required"`
	IntegrationNodes          int    `json:"integration_nodes" validate:"gte=1"`
	IntegrationServersPerNode int    `json:"integration_servers_per_node" validate:"gte=1"`
}

// MQDetails holds MQ topology information. Required when the source uses MQ.
type MQDetails struct {
	QueueManagersPerNode  int    `json:"queue_managers_per_node" validate:"gte=1"`
	QueueManagersInScope  bool   `json:"queue_managers_in_scope"`
	TopologyDiagramURL    string `json:"topology_diagram_url,omitempty"`
}

// SourceEnvironment describes the environment being migrated away from.
type SourceEnvironment struct {
	ProductVersion       ProductVersion      `json:"product_version" validate:"required,oneof=WMB_v6 WMB_v7 WMB_v8 IIB_v9 IIB_v10 ACE_v11 ACE_v12"`
	HostPlatform         HostPlatform        `json:"host_platform" validate:"required,oneof=on_premise cloud mainframe container"`
	HostPlatformOS       string              `json:"host_platform_os,omitempty"`
	Environments         []EnvironmentConfig `json:"environments" validate:"min=1,dive"`
	HasMQ                bool                `json:"has_mq"`
	MQDetails            *MQDetails          `json:"mq_details,omitempty"`
	ExternalSystems      []string            `json:"external_systems,omitempty"`
	IntegrationProtocols []string            `json:"integration_protocols,omitempty"`
	DevOpsPipeline       string              `json:"devops_pipeline,omitempty"`
	TotalFlows           int                 `json:"total_flows" validate:"gte=1"`
	HasCustomPlugins     bool                `json:"has_custom_plugins"`
	CustomPluginCount    int                 `json:"custom_plugin_count" validate:"gte=0"`
	CustomPluginDetails  string              `json:"custom_plugin_details,omitempty"`
	ConfigurableServices int                 `json:"configurable_services" validate:"gte=0"`
}

// TargetEnvironment describes the ACE environment being migrated to.
type TargetEnvironment struct {
	ProductVersion            string              `json:"product_version" validate:"required"`
	HostPlatform              HostPlatform        `json:"host_platform" validate:"required,oneof=on_premise cloud mainframe container"`
	HostPlatformOS            string              `json:"host_platform_os,omitempty"`
	MigrationType             MigrationType       `json:"migration_type" validate:"required,oneof=parallel in_place"`
	ProductInstallationNeeded bool                `json:"product_installation_needed"`
	InfrastructureMigration   bool                `json:"infrastructure_migration"`
	LikeToLikeMigration       bool                `json:"like_to_like_migration"`
	Environments              []EnvironmentConfig `json:"environments" validate:"min=1,dive"`
	KeepCustomPlugins         bool                `json:"keep_custom_plugins"`
	ApplicationsInScope       int                 `json:"applications_in_scope" validate:"gte=1"`
	ExternalSystemsInScope    []string            `json:"external_systems_in_scope,omitempty"`
	IntegrationProtocols      []string            `json:"integration_protocols,omitempty"`
}

// GeneralInfo carries the non-technical migration context.
type GeneralInfo struct {
	MigrationDrivers        []string `json:"migration_drivers" validate:"min=1"`
	Timeline                string   `json:"timeline,omitempty"`
	CurrentIssues           string   `json:"current_issues,omitempty"`
	RemoteAccessAvailable   bool     `json:"remote_access_available"`
	InternalSupportTeams    bool     `json:"internal_support_teams"`
	CustomerPerformsTesting bool     `json:"customer_performs_testing"`
	TestingApproach         []string `json:"testing_approach,omitempty"`
}

// Questionnaire is the complete submission.
type Questionnaire struct {
	Source      SourceEnvironment `json:"source_environment" validate:"required"`
	Target      TargetEnvironment `json:"target_environment" validate:"required"`
	General     GeneralInfo       `json:"general_info"`
	ProjectName string            `json:"project_name,omitempty"`
	ProjectID   string            `json:"project_id,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(sourceEnvironmentValidation, SourceEnvironment{})
	return v
}

// MQ details must be present when the source uses MQ.
func sourceEnvironmentValidation(sl validator.StructLevel) {
	src := sl.Current().Interface().(SourceEnvironment)
	if src.HasMQ && src.MQDetails == nil {
		sl.ReportError(src.MQDetails, "MQDetails", "mq_details", "required_with_mq", "")
	}
}

// Validate checks the complete questionnaire.
func (q *Questionnaire) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("questionnaire field %s failed %s validation: %w", first.Namespace(), first.Tag(), err)
	}
	return err
}
