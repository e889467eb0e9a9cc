package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	in := ProjectInput{Title: "Demo", Description: "d", Category: "web"}

	_, err := env.content.CreateProject(ctx, nil, in)
	assert.True(t, errs.IsForbidden(err))
	_, err = env.content.CreateProject(ctx, alice, in)
	assert.True(t, errs.IsForbidden(err))

	projects, err := env.content.ListAllProjects(ctx, env.owner)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProjectDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.project(t, ProjectInput{
		Title:        "  Demo  ",
		Technologies: "Go, , PostgreSQL ,htmx",
		Image:        &Upload{Data: pngBytes, Filename: "shot.png"},
	})
	assert.Equal(t, "Demo", p.Title)
	assert.False(t, p.IsPublished)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, "Go, PostgreSQL, htmx", p.Technologies)
	require.NotNil(t, p.ImageURL)
	assert.True(t, strings.HasPrefix(*p.ImageURL, "/uploads/"))

	_, err := env.content.CreateProject(ctx, env.owner, ProjectInput{Title: "X", Description: "d", Category: "web"})
	assert.True(t, errs.IsValidationError(err))
	_, err = env.content.CreateProject(ctx, env.owner, ProjectInput{Title: "Valid", Description: "d", Category: "games"})
	assert.True(t, errs.IsValidationError(err))
	_, err = env.content.CreateProject(ctx, env.owner, ProjectInput{Title: "Valid", Description: "d", Category: "web",
		Image: &Upload{Data: []byte("%PDF-1.4 not an image"), Filename: "doc.png"}})
	assert.True(t, errs.IsUnsupportedMediaTypeError(err))
}

func TestPublishScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := env.project(t, ProjectInput{Title: "Demo", Category: "web"})
	public, err := env.content.ListPublishedProjects(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, public)

	_, err = env.content.GetPublishedProject(ctx, nil, draft.ID)
	assert.True(t, errs.IsNotFound(err))

	published, err := env.content.UpdateProject(ctx, env.owner, draft.ID, ProjectInput{
		Title: "Demo", Description: "description", Category: "web", IsPublished: true,
	})
	require.NoError(t, err)
	assert.True(t, published.UpdatedAt.After(draft.UpdatedAt))
	assert.True(t, published.CreatedAt.Equal(draft.CreatedAt))

	public, err = env.content.ListPublishedProjects(ctx, "")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, draft.ID, public[0].ID)

	detail, err := env.content.GetPublishedProject(ctx, nil, draft.ID)
	require.NoError(t, err)
	assert.False(t, detail.LikedByMe)
	assert.Contains(t, detail.ShareURL, "linkedin.com")
}

func TestListPublishedProjectsByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.project(t, ProjectInput{Title: "Web one", Category: "web", IsPublished: true})
	env.project(t, ProjectInput{Title: "AI one", Category: "ai", IsPublished: true})
	env.project(t, ProjectInput{Title: "Web two", Category: "web", IsPublished: true})
	env.project(t, ProjectInput{Title: "Web draft", Category: "web"})

	web, err := env.content.ListPublishedProjects(ctx, "web")
	require.NoError(t, err)
	require.Len(t, web, 2)
	assert.Equal(t, "Web two", web[0].Title)
	assert.Equal(t, "Web one", web[1].Title)

	categories, err := env.content.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai", "web"}, categories)
}

func TestListFeaturedProjectsLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		env.project(t, ProjectInput{Title: "Featured", Category: "web", IsPublished: true, IsFeatured: true})
	}
	env.project(t, ProjectInput{Title: "Hidden", Category: "web", IsFeatured: true})

	featured, err := env.content.ListFeaturedProjects(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, featured, DefaultFeaturedLimit)

	featured, err = env.content.ListFeaturedProjects(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, featured, 5)
	for _, p := range featured {
		assert.True(t, p.IsPublished)
		assert.True(t, p.IsFeatured)
	}

	assert.Equal(t, 1, clampLimit(1, 3, 50))
	assert.Equal(t, 50, clampLimit(51, 3, 50))
	assert.Equal(t, 3, clampLimit(-1, 3, 50))
}

func TestUpdateAndDeleteMissingProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := env.content.UpdateProject(ctx, env.owner, missing, ProjectInput{Title: "Title", Description: "d", Category: "web"})
	assert.True(t, errs.IsNotFound(err))
	err = env.content.DeleteProject(ctx, env.owner, missing)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteProjectRemovesInteractions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	p := env.project(t, ProjectInput{Title: "Doomed", Category: "web", IsPublished: true})

	_, err := env.interaction.ToggleLike(ctx, alice, p.ID)
	require.NoError(t, err)
	_, err = env.interaction.AddComment(ctx, alice, p.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, env.content.DeleteProject(ctx, env.owner, p.ID))

	likes, err := env.db.LikeRepo().CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, likes)
	comments, err := env.db.CommentRepo().CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, comments)

	_, err = env.interaction.ListComments(ctx, nil, p.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestAchievements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.CreateAchievement(ctx, env.owner, AchievementInput{
		Title: "Bad date", Description: "d", Category: "award", DateAchieved: "2024-13-40",
	})
	assert.True(t, errs.IsValidationError(err))

	older, err := env.content.CreateAchievement(ctx, env.owner, AchievementInput{
		Title: "Older", Description: "d", Category: "award", DateAchieved: "2021-03-04", IsPublished: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2021-03-04", older.AchievedOn())

	_, err = env.content.CreateAchievement(ctx, env.owner, AchievementInput{
		Title: "Undated", Description: "d", Category: "other", IsPublished: true,
	})
	require.NoError(t, err)
	_, err = env.content.CreateAchievement(ctx, env.owner, AchievementInput{
		Title: "Newer", Description: "d", Category: "certification", DateAchieved: "2023-01-01", IsPublished: true,
	})
	require.NoError(t, err)

	list, err := env.content.ListPublishedAchievements(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Newer", "Older", "Undated"}, []string{list[0].Title, list[1].Title, list[2].Title})

	updated, err := env.content.UpdateAchievement(ctx, env.owner, older.ID, AchievementInput{
		Title: "Older", Description: "d", Category: "award",
	})
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
	assert.Empty(t, updated.AchievedOn())

	list, err = env.content.ListPublishedAchievements(ctx, "award")
	require.NoError(t, err)
	assert.Empty(t, list)

	alice := env.member(t, "alice")
	err = env.content.DeleteAchievement(ctx, alice, older.ID)
	assert.True(t, errs.IsForbidden(err))
	require.NoError(t, env.content.DeleteAchievement(ctx, env.owner, older.ID))
	assert.True(t, errs.IsNotFound(env.content.DeleteAchievement(ctx, env.owner, older.ID)))
}
