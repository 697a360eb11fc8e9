package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/types"
)

func raw(title, company, source string) types.RawListing {
	return types.RawListing{Title: title, Company: company, Source: source, Type: types.TypeJob}
}

func TestKeyNormalization(t *testing.T) {
	assert.Equal(t, Key("Backend Engineer", "Acme"), Key("backend   engineer", "ACME"))
	assert.NotEqual(t, Key("Backend Engineer", "Acme"), Key("Backend Engineer", "Beta"))
}

func TestNormalizeCollapsesCaseAndWhitespaceVariants(t *testing.T) {
	listings := []types.RawListing{
		raw("Backend Engineer", "Acme", "indeed"),
		raw("backend  engineer", "ACME", "wellfound"),
	}

	out := Normalize(listings, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Backend Engineer", out[0].Title)
	assert.Equal(t, "indeed", out[0].Source)
}

func TestNormalizeMoreCompleteRecordWins(t *testing.T) {
	now := time.Now()
	sparse := raw("Backend Engineer", "Acme", "indeed")
	rich := types.RawListing{
		Title:       "Backend Engineer",
		Company:     "acme",
		Description: "Build Go services.",
		Location:    "Berlin",
		URL:         "https://example.com/job",
		Skills:      []string{"Go"},
		Source:      "wellfound",
		PostedAt:    &now,
		Type:        types.TypeJob,
	}

	out := Normalize([]types.RawListing{sparse, rich}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "wellfound", out[0].Source)
	assert.Equal(t, "Build Go services.", out[0].Description)
}

func TestNormalizeTieKeepsFirstSeen(t *testing.T) {
	a := raw("Backend Engineer", "Acme", "indeed")
	b := raw("Backend Engineer", "Acme", "wellfound")

	out := Normalize([]types.RawListing{a, b}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "indeed", out[0].Source)
}

func TestNormalizePreservesFirstOccurrenceOrder(t *testing.T) {
	listings := []types.RawListing{
		raw("Role A", "One", "s"),
		raw("Role B", "Two", "s"),
		raw("role a", "ONE", "s"), // duplicate of the first
		raw("Role C", "Three", "s"),
	}

	out := Normalize(listings, nil)
	require.Len(t, out, 3)
	assert.Equal(t, "Role A", out[0].Title)
	assert.Equal(t, "Role B", out[1].Title)
	assert.Equal(t, "Role C", out[2].Title)
}

func TestNormalizeWinnerKeepsOriginalPosition(t *testing.T) {
	sparse := raw("Role A", "One", "indeed")
	other := raw("Role B", "Two", "indeed")
	rich := raw("role a", "one", "wellfound")
	rich.Description = "Much more detail about the role."
	rich.Location = "Remote"
	rich.URL = "https://example.com"

	out := Normalize([]types.RawListing{sparse, other, rich}, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "wellfound", out[0].Source, "winner should replace the loser in place")
	assert.Equal(t, "Role B", out[1].Title)
}

func TestNormalizeSkipsUntitledListings(t *testing.T) {
	out := Normalize([]types.RawListing{raw("  ", "Acme", "s"), raw("Role", "Acme", "s")}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Role", out[0].Title)
}

func TestNormalizeCustomScorer(t *testing.T) {
	// A scorer that prefers listings with salary info, regardless of
	// everything else.
	salaryScorer := func(l types.RawListing) int {
		if l.SalaryRange != "" {
			return 1
		}
		return 0
	}

	rich := raw("Role", "Acme", "indeed")
	rich.Description = "Long description with lots of content here."
	rich.Skills = []string{"Go", "Python"}
	withSalary := raw("role", "acme", "wellfound")
	withSalary.SalaryRange = "$100k"

	out := Normalize([]types.RawListing{rich, withSalary}, salaryScorer)
	require.Len(t, out, 1)
	assert.Equal(t, "wellfound", out[0].Source)
}

func TestIDDeterministic(t *testing.T) {
	a := ID("Backend Engineer", "Acme", "indeed")
	b := ID("backend   engineer", "ACME", "indeed")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ID("Backend Engineer", "Acme", "wellfound"))
	assert.Len(t, a, 32)
}

func TestWeightedScorerFavorsSubstance(t *testing.T) {
	thin := raw("Role", "Acme", "s")
	thin.URL = "https://example.com"
	thin.Location = "Berlin"

	meaty := raw("Role", "Acme", "s")
	meaty.Description = "A long description exceeding one hundred characters so the substance bonus applies to this particular listing."
	meaty.Skills = []string{"Go", "Kubernetes", "PostgreSQL"}

	assert.Greater(t, WeightedScorer(meaty), WeightedScorer(thin))
}
