package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/services"
)

func TestCreateTag(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	tag, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: " design "})
	require.NoError(t, err)
	assert.Equal(t, "design", tag.Name)
	assert.NotEmpty(t, tag.ID)

	_, err = f.tags.CreateTag(ctx, model.CreateTagInput{Name: "design"})
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "a tag with this name already exists")

	_, err = f.tags.CreateTag(ctx, model.CreateTagInput{Name: ""})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestGetTags_OrderedByName(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: name})
		require.NoError(t, err)
	}

	tags, err := f.tags.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "mid", tags[1].Name)
	assert.Equal(t, "zeta", tags[2].Name)
}

func TestGetOrCreateTag(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	created, err := f.tags.GetOrCreateTag(ctx, "ops", "#123456")
	require.NoError(t, err)

	again, err := f.tags.GetOrCreateTag(ctx, "ops", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "#123456", again.Color)
}

func TestResolveTags(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.owner)

	existing, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: "bug"})
	require.NoError(t, err)

	tags, err := f.tags.ResolveTags(ctx, []string{" feature", "", "bug", "feature", "  ", "docs"})
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "feature", tags[0].Name)
	assert.Equal(t, "bug", tags[1].Name)
	assert.Equal(t, existing.ID, tags[1].ID)
	assert.Equal(t, "docs", tags[2].Name)

	all, err := f.tags.GetTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := f.tags.ResolveTags(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTagService_RequiresActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tags.CreateTag(ctx, model.CreateTagInput{Name: "anon"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = f.tags.GetTags(ctx)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = f.tags.GetOrCreateTag(ctx, "anon", "")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = f.tags.ResolveTags(ctx, []string{"anon"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	tags, err := f.tags.GetTags(as(f.owner))
	require.NoError(t, err)
	assert.Empty(t, tags)
}
