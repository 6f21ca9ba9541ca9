package engine

import (
	"context"
	"testing"

	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/Veraticus/social-capital/internal/tags"
	"github.com/Veraticus/social-capital/internal/testutil"
	"github.com/Veraticus/social-capital/internal/testutil/contacts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AddContact(t *testing.T) {
	eng, db := newTestEngine(t, testutil.TestDBOptions{})
	ctx := context.Background()

	c, err := eng.AddContact(ctx, ContactInput{
		Name:         "  Morgan  ",
		Note:         "college friend",
		ValueProvide: "design reviews",
		Tags:         []string{tags.GrowthEngine, tags.GrowthEngine, " ", tags.LifeExperience},
		Score:        model.ScoreVector{X: 8, Y: 9, Z: 3},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Morgan", c.Name)
	assert.Equal(t, model.CategoryStrategicGoal, c.Category)
	assert.Equal(t, []string{tags.GrowthEngine, tags.LifeExperience}, c.Tags)

	stored := db.MustGetContact(c.ID)
	assert.Equal(t, model.CategoryStrategicGoal, stored.Category)
	assert.Equal(t, "design reviews", stored.ValueProvide)
}

func TestEngine_AddContactValidation(t *testing.T) {
	eng, db := newTestEngine(t, testutil.TestDBOptions{})
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		in      ContactInput
	}{
		{
			name:    "empty name",
			in:      ContactInput{Name: "   ", Score: model.ScoreVector{X: 1, Y: 1, Z: 1}},
			wantErr: ErrEmptyName,
		},
		{
			name:    "score above range",
			in:      ContactInput{Name: "A", Score: model.ScoreVector{X: 11, Y: 1, Z: 1}},
			wantErr: model.ErrInvalidScore,
		},
		{
			name:    "negative score",
			in:      ContactInput{Name: "A", Score: model.ScoreVector{X: 1, Y: -0.5, Z: 1}},
			wantErr: model.ErrInvalidScore,
		},
		{
			name:    "unknown tag",
			in:      ContactInput{Name: "A", Tags: []string{"golf_buddy"}},
			wantErr: tags.ErrUnknownTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.AddContact(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := db.Storage.ListContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEngine_UpdateContact(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	target := db.Contacts[4]
	require.Equal(t, model.CategoryOthers, target.Category)

	in := InputFrom(target)
	in.Score = model.ScoreVector{X: 9, Y: 9, Z: 9}
	in.Note = "promoted"

	updated, err := eng.UpdateContact(ctx, target.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCorePower, updated.Category)
	assert.Equal(t, target.CreatedAt.Unix(), updated.CreatedAt.Unix())

	stored := db.MustGetContact(target.ID)
	assert.Equal(t, model.CategoryCorePower, stored.Category)
	assert.Equal(t, "promoted", stored.Note)

	_, err = eng.UpdateContact(ctx, "missing", in)
	assert.ErrorIs(t, err, storage.ErrContactNotFound)
}

func TestEngine_DeleteContact(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.DeleteContact(ctx, db.Contacts[0].ID))

	_, err := eng.Contact(ctx, db.Contacts[0].ID)
	assert.ErrorIs(t, err, storage.ErrContactNotFound)
	assert.ErrorIs(t, eng.DeleteContact(ctx, db.Contacts[0].ID), storage.ErrContactNotFound)

	all, err := eng.Contacts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(db.Contacts)-1)
}

func TestEngine_ImportContacts(t *testing.T) {
	eng, db := newTestEngine(t, testutil.TestDBOptions{})
	ctx := context.Background()

	batch := []ContactInput{
		{Name: "One", Score: model.ScoreVector{X: 8, Y: 8, Z: 8}},
		{Name: "Two", Score: model.ScoreVector{X: 1, Y: 8, Z: 1}},
	}
	var progressed int
	imported, err := eng.ImportContacts(ctx, batch, func(done, _ int) { progressed = done })
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, 2, progressed)
	assert.Equal(t, model.CategoryCorePower, imported[0].Category)
	assert.Equal(t, model.CategoryPrestigeLeverage, imported[1].Category)

	bad := []ContactInput{
		{Name: "Three", Score: model.ScoreVector{X: 1, Y: 1, Z: 1}},
		{Name: "Four", Score: model.ScoreVector{X: 12}},
	}
	_, err = eng.ImportContacts(ctx, bad, nil)
	assert.ErrorIs(t, err, model.ErrInvalidScore)

	stored, err := db.Storage.ListContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestEngine_Explain(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	c, evals, err := eng.Explain(ctx, db.Contacts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryStrategicGoal, c.Category)
	require.Len(t, evals, len(model.PriorityOrder))

	selected := 0
	for _, e := range evals {
		if e.Selected {
			selected++
			assert.Equal(t, c.Category, e.Category)
		}
	}
	assert.Equal(t, 1, selected)
}

func TestEngine_Dashboard(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.TestDBOptions{
		Builder: contacts.NewBuilder(t).WithFixture(contacts.FixtureNeglected),
	})

	report, err := eng.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.Total)

	var kinds []model.FindingKind
	for _, f := range report.Findings {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []model.FindingKind{
		model.FindingGrowthVacuum,
		model.FindingLowDiversity,
		model.FindingWeakCornerstone,
		model.FindingEnergyDeficit,
		model.FindingRelevanceMismatch,
		model.FindingMissingCorePower,
	}, kinds)
}

func TestEngine_DashboardEmpty(t *testing.T) {
	eng, _ := newTestEngine(t, testutil.TestDBOptions{})

	report, err := eng.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, model.FindingNoContacts, report.Findings[0].Kind)
	assert.Zero(t, report.Summary.Total)
}
