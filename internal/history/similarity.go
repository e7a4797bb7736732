package history

import "sort"

// Similarity weights. They sum to 1.0 so a project identical to the profile
// scores exactly 1.0.
const (
	weightFlowProximity  = 0.35
	weightInfrastructure = 0.20
	weightSourceVersion  = 0.15
	weightTargetVersion  = 0.10
	weightMQ             = 0.10
	weightPlugins        = 0.10
)

// Similarity scores how close a historical project is to the profile.
// Purely deterministic: the same inputs always produce the same score.
func Similarity(profile Profile, p Project) float64 {
	score := weightFlowProximity * flowProximity(profile.FlowCount, p.FlowCount)

	if profile.Infrastructure == p.Infrastructure {
		score += weightInfrastructure
	}
	if profile.SourceVersion == p.SourceVersion {
		score += weightSourceVersion
	}
	if profile.TargetVersion == p.TargetVersion {
		score += weightTargetVersion
	}
	if profile.HasMQ == p.HasMQ {
		score += weightMQ
	}
	if profile.HasCustomPlugins == p.HasCustomPlugins {
		score += weightPlugins
	}

	return score
}

// flowProximity is 1.0 for identical flow counts and decays linearly with
// the relative difference.
func flowProximity(a, b int) float64 {
	if a == b {
		return 1.0
	}
	if a <= 0 || b <= 0 {
		return 0
	}
	max := a
	if b > max {
		max = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - float64(diff)/float64(max)
}

// Rank scores and orders projects by descending similarity, returning at
// most topK matches. Ties break on project ID so the ordering is stable
// across calls.
func Rank(profile Profile, projects []Project, topK int) []Match {
	matches := make([]Match, 0, len(projects))
	for _, p := range projects {
		matches = append(matches, Match{Project: p, SimilarityScore: Similarity(profile, p)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		return matches[i].ID < matches[j].ID
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
