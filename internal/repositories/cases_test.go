package repositories_test

import (
	"context"
	"testing"

	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseRepository_Case(t *testing.T) {
	repo := repositories.NewCaseRepository(newTestDB(t), newTestLogger())
	ctx := context.Background()

	c, err := repo.Case(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	assert.Equal(t, "The Hollowbrook Manor Affair", c.Title)
	assert.Contains(t, c.Summary, "Lord Edmund Hollowbrook")

	_, err = repo.Case(ctx, "no-such-case")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCaseRepository_Suspects(t *testing.T) {
	repo := repositories.NewCaseRepository(newTestDB(t), newTestLogger())
	ctx := context.Background()

	suspects, err := repo.Suspects(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	require.Len(t, suspects, 4)

	names := make([]string, 0, len(suspects))
	for _, s := range suspects {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Mrs. Bellamy")
	assert.Contains(t, names, "Mr. Holloway")
	assert.Contains(t, names, "Tommy the Janitor")
	assert.Contains(t, names, "Dr. Adrian Blackwood")

	tommy, err := repo.Suspect(ctx, "hollowbrook-manor", "Tommy the Janitor")
	require.NoError(t, err)
	assert.Equal(t, "Janitor", tommy.Occupation)
	assert.NotEmpty(t, tommy.Background)

	_, err = repo.Suspect(ctx, "hollowbrook-manor", "Professor Plum")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCaseRepository_CaseFileReads(t *testing.T) {
	repo := repositories.NewCaseRepository(newTestDB(t), newTestLogger())
	ctx := context.Background()

	clues, err := repo.Clues(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	require.Len(t, clues, 3)
	for i, clue := range clues {
		assert.Equal(t, int64(i), clue.Order)
	}

	evidence, err := repo.Evidence(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	assert.Len(t, evidence, 3)

	timeline, err := repo.Timeline(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	require.Len(t, timeline, 4)
	assert.Equal(t, "21:30", timeline[0].HappenedAt)
	assert.Equal(t, "00:05", timeline[3].HappenedAt)

	alibis, err := repo.Alibis(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	require.Len(t, alibis, 4)
	corroborated := 0
	for _, alibi := range alibis {
		if alibi.Corroborated {
			corroborated++
		}
	}
	assert.Equal(t, 1, corroborated)

	scores, err := repo.Credibility(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	require.Len(t, scores, 4)
	for _, score := range scores {
		assert.Positive(t, score.Score)
	}
}

func TestCaseRepository_SearchLocation(t *testing.T) {
	repo := repositories.NewCaseRepository(newTestDB(t), newTestLogger())
	ctx := context.Background()

	tests := []struct {
		name      string
		location  string
		wantNames []string
	}{
		{
			name:      "exact location",
			location:  "study",
			wantNames: []string{"Broken pocket watch"},
		},
		{
			name:      "substring with different case",
			location:  "The Library",
			wantNames: []string{"Promissory note"},
		},
		{
			name:      "nothing hidden there",
			location:  "attic",
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.SearchLocation(ctx, "hollowbrook-manor", tt.location)
			require.NoError(t, err)
			var names []string
			for _, e := range found {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestCaseRepository_Seed(t *testing.T) {
	repo := repositories.NewCaseRepository(newTestDB(t), newTestLogger())
	ctx := context.Background()

	seed := models.CaseSeed{
		Case: models.Case{
			ID:      "orient-sleeper",
			Title:   "Death on the Night Sleeper",
			Summary: "A passenger vanished between two stations.",
		},
		Suspects: []models.Suspect{
			{Name: "The Conductor", Occupation: "Conductor", Demeanor: "curt", Background: "Knows the schedule by heart."},
			{Name: "Lady Ashcombe", Occupation: "Widow", Demeanor: "serene", Background: "Travelling with an empty jewellery case."},
		},
		Clues: []models.Clue{
			{Order: 0, Description: "The sleeper compartment was locked from outside."},
		},
		Evidence: []models.Evidence{
			{Name: "Torn ticket stub", Location: "dining car", Description: "Dated the previous day."},
		},
		Timeline: []models.TimelineEvent{
			{HappenedAt: "02:10", Description: "The train stops at a signal."},
		},
		Alibis: []models.Alibi{
			{SuspectName: "The Conductor", Claim: "Punching tickets in the rear carriage.", Corroborated: true},
		},
	}

	require.NoError(t, repo.Seed(ctx, seed))

	c, err := repo.Case(ctx, "orient-sleeper")
	require.NoError(t, err)
	assert.Equal(t, "Death on the Night Sleeper", c.Title)

	suspects, err := repo.Suspects(ctx, "orient-sleeper")
	require.NoError(t, err)
	assert.Len(t, suspects, 2)

	// Reseeding replaces the content rather than appending to it.
	seed.Case.Title = "Death on the Night Sleeper, Revised"
	seed.Suspects = seed.Suspects[:1]
	seed.Clues = nil
	require.NoError(t, repo.Seed(ctx, seed))

	c, err = repo.Case(ctx, "orient-sleeper")
	require.NoError(t, err)
	assert.Equal(t, "Death on the Night Sleeper, Revised", c.Title)

	suspects, err = repo.Suspects(ctx, "orient-sleeper")
	require.NoError(t, err)
	assert.Len(t, suspects, 1)

	clues, err := repo.Clues(ctx, "orient-sleeper")
	require.NoError(t, err)
	assert.Empty(t, clues)

	// The default case is untouched.
	defaultSuspects, err := repo.Suspects(ctx, "hollowbrook-manor")
	require.NoError(t, err)
	assert.Len(t, defaultSuspects, 4)
}
