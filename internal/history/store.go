// Package history manages the corpus of completed migration projects and
// retrieves the ones most similar to a new engagement. Retrieval is a
// deterministic feature-similarity ranking; it only enriches the report and
// never alters the deterministic estimate.
package history

import "context"

// Project is a completed historical migration with its outcome.
type Project struct {
	ID                 string   `json:"project_id"`
	SourceVersion      string   `json:"source_version"`
	TargetVersion      string   `json:"target_version"`
	FlowCount          int      `json:"flow_count"`
	Infrastructure     string   `json:"infrastructure"`
	HasMQ              bool     `json:"has_mq"`
	HasCustomPlugins   bool     `json:"has_custom_plugins"`
	EstimatedDays      float64  `json:"estimated_days"`
	ActualDays         float64  `json:"actual_days"`
	VariancePercentage float64  `json:"variance_percentage"`
	IssuesEncountered  []string `json:"issues_encountered,omitempty"`
	LessonsLearned     string   `json:"lessons_learned,omitempty"`
	ComplexityScore    float64  `json:"complexity_score"`
}

// Profile is the feature summary of the project being estimated, used to
// rank historical projects.
type Profile struct {
	SourceVersion    string `json:"source_version"`
	TargetVersion    string `json:"target_version"`
	FlowCount        int    `json:"flow_count"`
	Infrastructure   string `json:"infrastructure"`
	HasMQ            bool   `json:"has_mq"`
	HasCustomPlugins bool   `json:"has_custom_plugins"`
}

// Match is a historical project with its similarity score in [0, 1].
type Match struct {
	Project
	SimilarityScore float64 `json:"similarity_score"`
}

// Stats summarizes the corpus.
type Stats struct {
	TotalProjects         int
	AvgVariancePercentage float64
	ByInfrastructure      map[string]int
}

// Retriever finds the historical projects most similar to a profile.
type Retriever interface {
	SimilarProjects(ctx context.Context, profile Profile, topK int) ([]Match, error)
}

// Store is the full corpus interface: retrieval plus corpus management.
type Store interface {
	Retriever
	AddProject(ctx context.Context, p Project) (string, error)
	CollectionStats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
