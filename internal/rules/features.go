package rules

// Infrastructure is the target environment infrastructure type.
type Infrastructure string

const (
	InfraContainer Infrastructure = "container"
	InfraOnPremise Infrastructure = "on_premise"
	InfraCloud     Infrastructure = "cloud"
)

// Valid reports whether the infrastructure value is a known type.
func (i Infrastructure) Valid() bool {
	switch i {
	case InfraContainer, InfraOnPremise, InfraCloud:
		return true
	}
	return false
}

// SetupStatus is the target environment setup status.
type SetupStatus string

const (
	SetupNew        SetupStatus = "new"
	SetupConfigured SetupStatus = "configured"
)

// Valid reports whether the setup status is a known value.
func (s SetupStatus) Valid() bool {
	return s == SetupNew || s == SetupConfigured
}

// HostPlatformMainframe is the host platform value that triggers the
// mainframe complexity factor.
const HostPlatformMainframe = "mainframe"

// The two oldest supported source versions. Anything in this set is treated
// as a legacy source. Revisit when the supported version list grows; the
// threshold is a fixed business rule, not inferred.
var legacySourceVersions = map[string]struct{}{
	"WMB_v6": {},
	"WMB_v7": {},
}

// IsLegacySource reports whether a source product version is old enough to
// carry the legacy-source risk factor.
func IsLegacySource(version string) bool {
	_, ok := legacySourceVersions[version]
	return ok
}

// ProjectFeatures is the engine input: the validated characteristics of a
// single migration project. Constructed per request; the engine never
// mutates it.
type ProjectFeatures struct {
	FlowCount        int            `json:"flow_count"`
	EnvironmentCount int            `json:"environment_count"`
	Infrastructure   Infrastructure `json:"infrastructure"`
	HasMessageQueue  bool           `json:"has_message_queue"`
	SetupStatus      SetupStatus    `json:"setup_status"`

	// Optional characteristics used for complexity factors.
	SourceVersion string `json:"source_version,omitempty"`
	HostPlatform  string `json:"host_platform,omitempty"`

	HasCustomPlugins         bool `json:"has_custom_plugins"`
	CustomPluginCount        int  `json:"custom_plugin_count"`
	IntegrationProtocolCount int  `json:"integration_protocol_count"`
	ExternalSystemCount      int  `json:"external_system_count"`
}

// Validate checks the feature vector before any arithmetic runs. A non-nil
// error is always a *ValidationError naming the offending field.
func (f ProjectFeatures) Validate() error {
	if f.FlowCount < 1 {
		return &ValidationError{Field: "flow_count", Message: "must be at least 1"}
	}
	if f.EnvironmentCount < 1 {
		return &ValidationError{Field: "environment_count", Message: "must be at least 1"}
	}
	if !f.Infrastructure.Valid() {
		return &ValidationError{Field: "infrastructure", Message: "unknown infrastructure type: " + string(f.Infrastructure)}
	}
	if !f.SetupStatus.Valid() {
		return &ValidationError{Field: "setup_status", Message: "unknown setup status: " + string(f.SetupStatus)}
	}
	if f.CustomPluginCount < 0 {
		return &ValidationError{Field: "custom_plugin_count", Message: "must not be negative"}
	}
	if f.IntegrationProtocolCount < 0 {
		return &ValidationError{Field: "integration_protocol_count", Message: "must not be negative"}
	}
	if f.ExternalSystemCount < 0 {
		return &ValidationError{Field: "external_system_count", Message: "must not be negative"}
	}
	return nil
}
