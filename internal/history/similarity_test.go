package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		SourceVersion:    "IIB_v10",
		TargetVersion:    "ACE_v12",
		FlowCount:        100,
		Infrastructure:   "container",
		HasMQ:            true,
		HasCustomPlugins: true,
	}
}

func TestSimilarityIdenticalProjectScoresOne(t *testing.T) {
	p := testProfile()
	identical := Project{
		ID:               "PROJ_X",
		SourceVersion:    p.SourceVersion,
		TargetVersion:    p.TargetVersion,
		FlowCount:        p.FlowCount,
		Infrastructure:   p.Infrastructure,
		HasMQ:            p.HasMQ,
		HasCustomPlugins: p.HasCustomPlugins,
	}
	assert.InDelta(t, 1.0, Similarity(p, identical), 1e-9)
}

func TestSimilarityDeterministic(t *testing.T) {
	p := testProfile()
	project := SeedProjects[0]
	assert.Equal(t, Similarity(p, project), Similarity(p, project))
}

func TestSimilarityFlowProximity(t *testing.T) {
	p := testProfile()

	near := Project{FlowCount: 90, SourceVersion: p.SourceVersion, TargetVersion: p.TargetVersion,
		Infrastructure: p.Infrastructure, HasMQ: p.HasMQ, HasCustomPlugins: p.HasCustomPlugins}
	far := near
	far.FlowCount = 400

	assert.Greater(t, Similarity(p, near), Similarity(p, far))
}

func TestSimilarityBounded(t *testing.T) {
	p := testProfile()
	for _, project := range SeedProjects {
		score := Similarity(p, project)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestRankOrdersByScoreThenID(t *testing.T) {
	p := testProfile()

	matches := Rank(p, SeedProjects, 0)
	require.Len(t, matches, len(SeedProjects))
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		ordered := prev.SimilarityScore > cur.SimilarityScore ||
			(prev.SimilarityScore == cur.SimilarityScore && prev.ID < cur.ID)
		assert.True(t, ordered, "matches out of order at %d", i)
	}

	// The seeded IIB_v10 container project with 100 flows is the profile's
	// closest neighbour.
	assert.Equal(t, "PROJ_2023_001", matches[0].ID)
}

func TestRankTopK(t *testing.T) {
	p := testProfile()
	matches := Rank(p, SeedProjects, 2)
	assert.Len(t, matches, 2)
}
