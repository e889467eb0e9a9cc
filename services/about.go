package services

import (
	"context"
	"strings"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type AboutInput struct {
	Content    string   `json:"content" validate:"required"`
	Skills     []string `json:"skills" validate:"dive,max=100"`
	Experience string   `json:"experience"`
	Education  string   `json:"education"`
}

// OwnerProfile is the owner's public contact card.
type OwnerProfile struct {
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Bio          string  `json:"bio"`
	ProfileImage *string `json:"profile_image,omitempty"`
	LinkedinURL  string  `json:"linkedin_url"`
	GithubURL    string  `json:"github_url"`
}

func newOwnerProfile(u *models.User) *OwnerProfile {
	if u == nil {
		return nil
	}
	return &OwnerProfile{
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		LinkedinURL:  u.LinkedinURL,
		GithubURL:    u.GithubURL,
	}
}

// AboutPage is the public about page: biography, displayed repositories and owner links.
type AboutPage struct {
	About *models.AboutMe      `json:"about"`
	Repos []*models.GitHubRepo `json:"repos"`
	Owner *OwnerProfile        `json:"owner"`
}

// HomePage gathers what the landing page shows.
type HomePage struct {
	Featured           []*models.Project     `json:"featured"`
	Recent             []*models.Project     `json:"recent"`
	RecentAchievements []*models.Achievement `json:"recent_achievements"`
	Owner              *OwnerProfile         `json:"owner"`
	ProjectCount       int64                 `json:"project_count"`
	AchievementCount   int64                 `json:"achievement_count"`
}

type AboutService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewAboutService(db database.Database) *AboutService {
	return &AboutService{
		db:     db,
		logger: log.With().Str("serviceName", "aboutService").Logger(),
	}
}

// GetAboutMe returns the about row, or nil before the owner has written one.
func (s *AboutService) GetAboutMe(ctx context.Context) (*models.AboutMe, error) {
	about, err := s.db.AboutMeRepo().Get(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find about", "about_me", err)
	}
	return about, nil
}

// UpsertAboutMe updates the single about row, creating it on first use.
func (s *AboutService) UpsertAboutMe(ctx context.Context, identity *Identity, in AboutInput) (*models.AboutMe, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	skills := make([]string, 0, len(in.Skills))
	for _, skill := range in.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	in.Skills = skills
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	about, err := s.db.AboutMeRepo().Upsert(ctx, func(a *models.AboutMe) {
		a.Content = in.Content
		a.Skills = in.Skills
		a.Experience = in.Experience
		a.Education = in.Education
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("save about", err)
	}
	return about, nil
}

func (s *AboutService) owner(ctx context.Context) (*OwnerProfile, error) {
	owner, err := s.db.UserRepo().FindOwner(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find owner", "user", err)
	}
	return newOwnerProfile(owner), nil
}

func (s *AboutService) AboutPage(ctx context.Context) (*AboutPage, error) {
	about, err := s.GetAboutMe(ctx)
	if err != nil {
		return nil, err
	}
	repos, err := s.db.GitHubRepoRepo().ListDisplayed(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find repositories", "github_repos", err)
	}
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	return &AboutPage{About: about, Repos: repos, Owner: owner}, nil
}

// Contact returns the owner's contact card, or nil when no owner exists.
func (s *AboutService) Contact(ctx context.Context) (*OwnerProfile, error) {
	return s.owner(ctx)
}

func (s *AboutService) Home(ctx context.Context) (*HomePage, error) {
	var (
		page HomePage
		err  error
	)
	projects := s.db.ProjectRepo()
	if page.Featured, err = projects.ListFeatured(ctx, DefaultFeaturedLimit); err != nil {
		return nil, errs.NewDatabaseError("find projects", "projects", err)
	}
	published, err := projects.ListPublished(ctx, "")
	if err != nil {
		return nil, errs.NewDatabaseError("find projects", "projects", err)
	}
	page.Recent = published[:min(len(published), 6)]
	page.ProjectCount = int64(len(published))

	achievements, err := s.db.AchievementRepo().ListPublished(ctx, "")
	if err != nil {
		return nil, errs.NewDatabaseError("find achievements", "achievements", err)
	}
	page.RecentAchievements = achievements[:min(len(achievements), 3)]
	page.AchievementCount = int64(len(achievements))

	if page.Owner, err = s.owner(ctx); err != nil {
		return nil, err
	}
	return &page, nil
}
