package history

import "context"

// SeedProjects is a starter corpus of anonymized completed migrations, used
// by the seed command to bootstrap an empty database.
var SeedProjects = []Project{
	{
		ID:                 "PROJ_2023_001",
		SourceVersion:      "IIB_v10",
		TargetVersion:      "ACE_v12",
		FlowCount:          100,
		Infrastructure:     "container",
		HasMQ:              true,
		HasCustomPlugins:   true,
		EstimatedDays:      55,
		ActualDays:         62,
		VariancePercentage: 12.7,
		IssuesEncountered: []string{
			"container networking complexity",
			"custom adapter compatibility",
			"MQ configuration migration",
		},
		LessonsLearned:  "Container networking setup took longer than expected. Custom adapters required refactoring for ACE v12 compatibility.",
		ComplexityScore: 7.5,
	},
	{
		ID:                 "PROJ_2023_002",
		SourceVersion:      "IIB_v9",
		TargetVersion:      "ACE_v11",
		FlowCount:          75,
		Infrastructure:     "on_premise",
		HasMQ:              true,
		HasCustomPlugins:   false,
		EstimatedDays:      42,
		ActualDays:         44,
		VariancePercentage: 4.8,
		IssuesEncountered: []string{
			"bar file rebuild issues",
		},
		LessonsLearned:  "Straightforward like-to-like migration. Most effort went into regression testing.",
		ComplexityScore: 4.0,
	},
	{
		ID:                 "PROJ_2023_003",
		SourceVersion:      "WMB_v7",
		TargetVersion:      "ACE_v12",
		FlowCount:          220,
		Infrastructure:     "on_premise",
		HasMQ:              true,
		HasCustomPlugins:   true,
		EstimatedDays:      120,
		ActualDays:         141,
		VariancePercentage: 17.5,
		IssuesEncountered: []string{
			"deprecated WMB nodes",
			"ESQL incompatibilities",
			"undocumented custom plugins",
		},
		LessonsLearned:  "Legacy WMB flows needed a full inventory pass before migration; several flows used nodes removed in ACE.",
		ComplexityScore: 8.5,
	},
	{
		ID:                 "PROJ_2024_001",
		SourceVersion:      "IIB_v10",
		TargetVersion:      "ACE_v12",
		FlowCount:          150,
		Infrastructure:     "container",
		HasMQ:              false,
		HasCustomPlugins:   false,
		EstimatedDays:      78,
		ActualDays:         74,
		VariancePercentage: -5.1,
		IssuesEncountered: []string{
			"image registry access delays",
		},
		LessonsLearned:  "Well-prepared CI/CD pipeline shortened the execution phase.",
		ComplexityScore: 5.0,
	},
	{
		ID:                 "PROJ_2024_002",
		SourceVersion:      "WMB_v6",
		TargetVersion:      "ACE_v11",
		FlowCount:          45,
		Infrastructure:     "on_premise",
		HasMQ:              true,
		HasCustomPlugins:   true,
		EstimatedDays:      38,
		ActualDays:         45,
		VariancePercentage: 18.4,
		IssuesEncountered: []string{
			"mainframe connectivity testing",
			"plugin source code unavailable",
		},
		LessonsLearned:  "Very old WMB v6 artifacts required an intermediate upgrade step; plan for source archaeology.",
		ComplexityScore: 9.0,
	},
	{
		ID:                 "PROJ_2024_003",
		SourceVersion:      "IIB_v10",
		TargetVersion:      "ACE_v12",
		FlowCount:          310,
		Infrastructure:     "cloud",
		HasMQ:              true,
		HasCustomPlugins:   false,
		EstimatedDays:      160,
		ActualDays:         171,
		VariancePercentage: 6.9,
		IssuesEncountered: []string{
			"cloud network policy tuning",
			"large regression test surface",
		},
		LessonsLearned:  "Phased cutover per environment kept risk manageable on a large estate.",
		ComplexityScore: 6.5,
	},
}

// Seed loads the starter corpus. Existing rows are left untouched; project
// IDs in the corpus are fixed so reseeding an already seeded database just
// duplicates rows and should be avoided.
func Seed(ctx context.Context, store Store) (int, error) {
	for i, p := range SeedProjects {
		if _, err := store.AddProject(ctx, p); err != nil {
			return i, err
		}
	}
	return len(SeedProjects), nil
}
