package services

import (
	"context"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentLimit = 5

type Dashboard struct {
	ProjectCount          int64             `json:"project_count"`
	PublishedProjectCount int64             `json:"published_project_count"`
	AchievementCount      int64             `json:"achievement_count"`
	CommentCount          int64             `json:"comment_count"`
	VisitorCount          int64             `json:"visitor_count"`
	RepoCount             int64             `json:"repo_count"`
	RecentProjects        []*models.Project `json:"recent_projects"`
	RecentComments        []CommentView     `json:"recent_comments"`
}

type DashboardService struct {
	db database.Database
}

func NewDashboardService(db database.Database) *DashboardService {
	return &DashboardService{db: db}
}

// Dashboard gathers the owner's overview. The queries run concurrently and the first failure wins.
func (s *DashboardService) Dashboard(ctx context.Context, identity *Identity) (*Dashboard, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}

	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			*dst = n
			return err
		})
	}
	count(&d.ProjectCount, s.db.ProjectRepo().Count)
	count(&d.PublishedProjectCount, s.db.ProjectRepo().CountPublished)
	count(&d.AchievementCount, s.db.AchievementRepo().Count)
	count(&d.CommentCount, s.db.CommentRepo().Count)
	count(&d.VisitorCount, s.db.UserRepo().CountMembers)
	count(&d.RepoCount, s.db.GitHubRepoRepo().Count)

	g.Go(func() error {
		projects, err := s.db.ProjectRepo().ListRecent(ctx, dashboardRecentLimit)
		d.RecentProjects = projects
		return err
	})
	g.Go(func() error {
		comments, err := s.db.CommentRepo().ListRecent(ctx, dashboardRecentLimit)
		views := make([]CommentView, 0, len(comments))
		for _, c := range comments {
			views = append(views, NewCommentView(c))
		}
		d.RecentComments = views
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("load dashboard", "dashboard", err)
	}
	return &d, nil
}
