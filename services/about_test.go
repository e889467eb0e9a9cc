package services

import (
	"context"
	"testing"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAboutMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	about, err := env.about.GetAboutMe(ctx)
	require.NoError(t, err)
	assert.Nil(t, about)

	first, err := env.about.UpsertAboutMe(ctx, env.owner, AboutInput{
		Content: "I build things",
		Skills:  []string{" Go ", "", "SQL"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, []string(first.Skills))

	second, err := env.about.UpsertAboutMe(ctx, env.owner, AboutInput{
		Content:    "I still build things",
		Experience: "ten years",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	count, err := env.db.AboutMeRepo().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	about, err = env.about.GetAboutMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "I still build things", about.Content)
	assert.Equal(t, "ten years", about.Experience)
	assert.Empty(t, about.Skills)
}

func TestUpsertAboutMeRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")

	_, err := env.about.UpsertAboutMe(ctx, alice, AboutInput{Content: "hijack"})
	assert.True(t, errs.IsForbidden(err))
	_, err = env.about.UpsertAboutMe(ctx, env.owner, AboutInput{Content: "   "})
	assert.True(t, errs.IsValidationError(err))

	about, err := env.about.GetAboutMe(ctx)
	require.NoError(t, err)
	assert.Nil(t, about)
}

func TestAboutPageAndHome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.about.UpsertAboutMe(ctx, env.owner, AboutInput{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, env.db.GitHubRepoRepo().ReplaceAll(ctx, []*models.GitHubRepo{
		{Name: "small", URL: "https://github.com/owner/small", Stars: 1},
		{Name: "big", URL: "https://github.com/owner/big", Stars: 10},
	}))

	page, err := env.about.AboutPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", page.About.Content)
	require.Len(t, page.Repos, 2)
	assert.Equal(t, "big", page.Repos[0].Name)
	require.NotNil(t, page.Owner)
	assert.Equal(t, "owner", page.Owner.Username)

	for i := 0; i < 8; i++ {
		env.project(t, ProjectInput{Title: "Project", IsPublished: true, IsFeatured: i%2 == 0})
	}
	home, err := env.about.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Featured, DefaultFeaturedLimit)
	assert.Len(t, home.Recent, 6)
	assert.Equal(t, int64(8), home.ProjectCount)
	assert.Empty(t, home.RecentAchievements)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	p := env.project(t, ProjectInput{Title: "Published", IsPublished: true})
	env.project(t, ProjectInput{Title: "Draft"})
	_, err := env.interaction.AddComment(ctx, alice, p.ID, "nice")
	require.NoError(t, err)

	_, err = env.dashboard.Dashboard(ctx, alice)
	assert.True(t, errs.IsForbidden(err))

	d, err := env.dashboard.Dashboard(ctx, env.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.ProjectCount)
	assert.Equal(t, int64(1), d.PublishedProjectCount)
	assert.Equal(t, int64(1), d.CommentCount)
	assert.Equal(t, int64(1), d.VisitorCount)
	assert.Zero(t, d.AchievementCount)
	require.Len(t, d.RecentProjects, 2)
	assert.Equal(t, "Draft", d.RecentProjects[0].Title)
	require.Len(t, d.RecentComments, 1)
	assert.Equal(t, "alice", d.RecentComments[0].Author.Username)
}
