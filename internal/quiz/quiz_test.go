package quiz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		Questions: []Question{
			{
				ID:     "platform",
				Prompt: "Platform?",
				Mode:   ModeSingle,
				Options: []Option{
					{ID: "ios", Label: "iOS", Scores: map[CandidateKey]int{"apple": 4, "google": 0}},
					{ID: "android", Label: "Android", Scores: map[CandidateKey]int{"google": 4, "samsung": 2}},
				},
			},
			{
				ID:     "markets",
				Prompt: "Markets?",
				Mode:   ModeMulti,
				Options: []Option{
					{ID: "west", Label: "West", Scores: map[CandidateKey]int{"apple": 2, "google": 2}},
					{ID: "china", Label: "China", Scores: map[CandidateKey]int{"huawei": 3}},
				},
			},
		},
		Candidates: []CandidateProfile{
			{Key: "apple", Name: "Apple App Store"},
			{Key: "google", Name: "Google Play"},
			{Key: "samsung", Name: "Galaxy Store"},
			{Key: "huawei", Name: "AppGallery"},
		},
	}
}

func TestAggregate(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		raw      map[string][]string
		expected map[CandidateKey]int
	}{
		{
			name:     "empty answers produce empty totals",
			raw:      map[string][]string{},
			expected: map[CandidateKey]int{},
		},
		{
			name: "single question sums option scores",
			raw:  map[string][]string{"platform": {"android"}},
			expected: map[CandidateKey]int{
				"google":  4,
				"samsung": 2,
			},
		},
		{
			name: "multi-choice accumulates across options",
			raw:  map[string][]string{"markets": {"west", "china"}},
			expected: map[CandidateKey]int{
				"apple":  2,
				"google": 2,
				"huawei": 3,
			},
		},
		{
			name: "totals combine across questions",
			raw: map[string][]string{
				"platform": {"ios"},
				"markets":  {"west"},
			},
			expected: map[CandidateKey]int{
				"apple":  6,
				"google": 2,
			},
		},
		{
			name:     "unknown question and option ids are ignored",
			raw:      map[string][]string{"platform": {"nope"}, "ghost": {"ios"}},
			expected: map[CandidateKey]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := AnswerSetFrom(tt.raw, catalog)
			totals := Aggregate(answers, catalog.Questions)
			assert.Equal(t, tt.expected, totals)
		})
	}
}

func TestAggregateNilAnswerSet(t *testing.T) {
	totals := Aggregate(nil, testCatalog().Questions)
	assert.Empty(t, totals)
}

func TestAnswerSetSingleChoiceReplaces(t *testing.T) {
	catalog := testCatalog()
	q, ok := catalog.Question("platform")
	require.True(t, ok)

	answers := NewAnswerSet()
	answers.Select(q, "ios")
	answers.Select(q, "android")

	assert.Equal(t, []string{"android"}, answers.Selected("platform"))
	assert.Equal(t, 1, answers.Len())
}

func TestAnswerSetMultiChoiceAccumulates(t *testing.T) {
	catalog := testCatalog()
	q, ok := catalog.Question("markets")
	require.True(t, ok)

	answers := NewAnswerSet()
	answers.Select(q, "west")
	answers.Select(q, "china")
	assert.Equal(t, []string{"china", "west"}, answers.Selected("markets"))

	answers.Deselect("markets", "china")
	assert.Equal(t, []string{"west"}, answers.Selected("markets"))

	answers.Deselect("markets", "west")
	assert.Nil(t, answers.Selected("markets"))
	assert.Equal(t, 0, answers.Len())
}

func TestAnswerSetReset(t *testing.T) {
	catalog := testCatalog()
	q, _ := catalog.Question("platform")

	answers := NewAnswerSet()
	answers.Select(q, "ios")
	require.Equal(t, 1, answers.Len())

	answers.Reset()
	assert.Equal(t, 0, answers.Len())
}

func TestRankTopCandidateIsFullFit(t *testing.T) {
	catalog := testCatalog()
	totals := map[CandidateKey]int{"apple": 6, "google": 3, "huawei": 1}

	results := Rank(totals, catalog)
	require.Len(t, results, 3)

	assert.Equal(t, CandidateKey("apple"), results[0].Key)
	assert.Equal(t, 100, results[0].Suitability)
	assert.Equal(t, 50, results[1].Suitability)
	assert.Equal(t, 17, results[2].Suitability)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
		assert.LessOrEqual(t, results[i].Suitability, 100)
		assert.GreaterOrEqual(t, results[i].Suitability, 0)
	}
}

func TestRankTieBreakFollowsCatalogOrder(t *testing.T) {
	catalog := testCatalog()
	totals := map[CandidateKey]int{"google": 5, "apple": 5, "samsung": 5}

	// Repeated runs must give the same order despite map iteration.
	for i := 0; i < 20; i++ {
		results := Rank(totals, catalog)
		require.Len(t, results, 3)
		assert.Equal(t, CandidateKey("apple"), results[0].Key)
		assert.Equal(t, CandidateKey("google"), results[1].Key)
		assert.Equal(t, CandidateKey("samsung"), results[2].Key)
	}
}

func TestRankEmptyTotals(t *testing.T) {
	results := Rank(map[CandidateKey]int{}, testCatalog())
	assert.Empty(t, results)
}

func TestRankAllZeroScores(t *testing.T) {
	results := Rank(map[CandidateKey]int{"apple": 0, "google": 0}, testCatalog())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 100, r.Suitability)
	}
}

func TestRankUnknownCandidateGetsPlaceholderProfile(t *testing.T) {
	results := Rank(map[CandidateKey]int{"mystery": 3}, testCatalog())
	require.Len(t, results, 1)
	assert.Equal(t, "mystery", results[0].Profile.Name)
	assert.NotNil(t, results[0].Profile.Strengths)
}

func TestRankAttachesProfiles(t *testing.T) {
	results := Rank(map[CandidateKey]int{"huawei": 2}, testCatalog())
	require.Len(t, results, 1)
	assert.Equal(t, "AppGallery", results[0].Profile.Name)
}

func TestSuitability(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		max      int
		expected int
	}{
		{"full fit", 10, 10, 100},
		{"half fit rounds", 5, 10, 50},
		{"rounds to nearest", 1, 3, 33},
		{"zero of zero", 0, 0, 100},
		{"nonzero of zero", 3, 0, 0},
		{"negative clamps to zero", -2, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, suitability(tt.score, tt.max))
		})
	}
}

func TestLoadCatalogEmbeddedDefault(t *testing.T) {
	catalog, err := LoadCatalog(t.TempDir())
	require.NoError(t, err)

	assert.NotEmpty(t, catalog.Questions)
	assert.NotEmpty(t, catalog.Candidates)

	// Every score key in the default data must resolve to a profile.
	for _, q := range catalog.Questions {
		for _, opt := range q.Options {
			for key := range opt.Scores {
				_, ok := catalog.Profile(key)
				assert.True(t, ok, "question %s option %s references unknown candidate %s", q.ID, opt.ID, key)
			}
		}
	}
}

func TestLoadCatalogOverrideFile(t *testing.T) {
	dir := t.TempDir()
	override := `{
		"questions": [
			{"id": "q1", "prompt": "?", "mode": "single",
			 "options": [{"id": "a", "label": "A", "scores": {"x": 1}}]}
		],
		"candidates": [{"key": "x", "name": "X", "strengths": [], "caveats": []}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.json"), []byte(override), 0o644))

	catalog, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Len(t, catalog.Questions, 1)
	assert.Equal(t, "q1", catalog.Questions[0].ID)
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"no questions", `{"questions": [], "candidates": []}`},
		{
			"duplicate question id",
			`{"questions": [
				{"id": "q", "prompt": "?", "mode": "single", "options": [{"id": "a", "label": "A", "scores": {}}]},
				{"id": "q", "prompt": "?", "mode": "single", "options": [{"id": "a", "label": "A", "scores": {}}]}
			], "candidates": []}`,
		},
		{
			"unknown mode",
			`{"questions": [{"id": "q", "prompt": "?", "mode": "tri", "options": [{"id": "a", "label": "A", "scores": {}}]}], "candidates": []}`,
		},
		{
			"question without options",
			`{"questions": [{"id": "q", "prompt": "?", "mode": "single", "options": []}], "candidates": []}`,
		},
		{
			"duplicate candidate key",
			`{"questions": [{"id": "q", "prompt": "?", "mode": "single", "options": [{"id": "a", "label": "A", "scores": {}}]}],
			  "candidates": [{"key": "x", "name": "X"}, {"key": "x", "name": "X2"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.json"), []byte(tt.data), 0o644))
			_, err := LoadCatalog(dir)
			assert.Error(t, err)
		})
	}
}
