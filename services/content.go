package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	DefaultFeaturedLimit = 3
	MaxFeaturedLimit     = 50
)

var (
	ProjectCategories     = []string{"web", "mobile", "desktop", "data", "ai", "other"}
	AchievementCategories = []string{"certification", "award", "competition", "publication", "other"}
)

type ProjectInput struct {
	Title        string  `json:"title" validate:"required,min=2,max=200"`
	Description  string  `json:"description" validate:"required"`
	Content      string  `json:"content"`
	DemoURL      string  `json:"demo_url" validate:"omitempty,url,max=300"`
	GithubURL    string  `json:"github_url" validate:"omitempty,url,max=300"`
	Technologies string  `json:"technologies" validate:"max=500"`
	Category     string  `json:"category" validate:"required,oneof=web mobile desktop data ai other"`
	IsPublished  bool    `json:"is_published"`
	IsFeatured   bool    `json:"is_featured"`
	Image        *Upload `json:"-"`
}

type AchievementInput struct {
	Title          string  `json:"title" validate:"required,min=2,max=200"`
	Description    string  `json:"description" validate:"required"`
	DateAchieved   string  `json:"date_achieved" validate:"omitempty,datetime=2006-01-02"`
	Category       string  `json:"category" validate:"required,oneof=certification award competition publication other"`
	CertificateURL string  `json:"certificate_url" validate:"omitempty,url,max=300"`
	IsPublished    bool    `json:"is_published"`
	Image          *Upload `json:"-"`
}

// ProjectDetail is a project page: the project, its counters and the caller's like state.
type ProjectDetail struct {
	*models.Project
	TechnologyList []string `json:"technology_list"`
	LikedByMe      bool     `json:"liked_by_me"`
	ShareURL       string   `json:"share_url,omitempty"`
}

type ContentService struct {
	db      database.Database
	storage Storage
	baseURL string
	logger  zerolog.Logger
}

func NewContentService(db database.Database, storage Storage, baseURL string) *ContentService {
	return &ContentService{
		db:      db,
		storage: storage,
		baseURL: baseURL,
		logger:  log.With().Str("serviceName", "contentService").Logger(),
	}
}

func (in *ProjectInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DemoURL = strings.TrimSpace(in.DemoURL)
	in.GithubURL = strings.TrimSpace(in.GithubURL)
	in.Category = strings.TrimSpace(in.Category)
	in.Technologies = models.JoinTags(models.SplitTags(in.Technologies))
}

func (in *AchievementInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DateAchieved = strings.TrimSpace(in.DateAchieved)
	in.Category = strings.TrimSpace(in.Category)
	in.CertificateURL = strings.TrimSpace(in.CertificateURL)
}

func (s *ContentService) storeImage(ctx context.Context, image *Upload) (*string, error) {
	if image == nil {
		return nil, nil
	}
	ref, err := s.storage.Store(ctx, image.Data, image.Filename)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func applyProjectInput(project *models.Project, in ProjectInput) {
	project.Title = in.Title
	project.Description = in.Description
	project.Content = in.Content
	project.DemoURL = in.DemoURL
	project.GithubURL = in.GithubURL
	project.Technologies = in.Technologies
	project.Category = in.Category
	project.IsPublished = in.IsPublished
	project.IsFeatured = in.IsFeatured
}

// CreateProject adds a project. Drafts stay hidden until is_published is set.
func (s *ContentService) CreateProject(ctx context.Context, identity *Identity, in ProjectInput) (*models.Project, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	project := &models.Project{}
	applyProjectInput(project, in)
	image, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	project.ImageURL = image

	if err := s.db.ProjectRepo().Add(ctx, project); err != nil {
		return nil, errs.NewDatabaseError("create project", "project", err)
	}
	s.logger.Info().Str("projectId", project.ID.String()).Str("title", project.Title).Msg("Created project")
	return project, nil
}

// UpdateProject replaces every editable field. A new image replaces the stored reference.
func (s *ContentService) UpdateProject(ctx context.Context, identity *Identity, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find project", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	applyProjectInput(project, in)
	if in.Image != nil {
		image, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		project.ImageURL = image
	}

	if err := s.db.ProjectRepo().Update(ctx, project); err != nil {
		return nil, errs.NewDatabaseError("update project", "project", err)
	}
	return project, nil
}

// DeleteProject removes a project with all of its comments and likes.
func (s *ContentService) DeleteProject(ctx context.Context, identity *Identity, id uuid.UUID) error {
	if err := Authorize(identity, RoleOwner); err != nil {
		return err
	}
	deleted, err := s.db.ProjectRepo().Delete(ctx, id)
	if err != nil {
		return errs.NewTransactionFailedError("delete project", err)
	}
	if !deleted {
		return errs.NewNotFound("project")
	}
	s.logger.Info().Str("projectId", id.String()).Msg("Deleted project")
	return nil
}

// GetProject returns any project, drafts included, for editing.
func (s *ContentService) GetProject(ctx context.Context, identity *Identity, id uuid.UUID) (*models.Project, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find project", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// GetPublishedProject returns the public page of a project. Drafts are visible to the owner only.
func (s *ContentService) GetPublishedProject(ctx context.Context, identity *Identity, id uuid.UUID) (*ProjectDetail, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find project", "project", err)
	}
	if project == nil || (!project.IsPublished && (identity == nil || !identity.Owner)) {
		return nil, errs.NewNotFound("project")
	}

	detail := &ProjectDetail{
		Project:        project,
		TechnologyList: project.TechnologyList(),
		ShareURL:       LinkedInShareURL(s.baseURL, project),
	}
	if identity != nil {
		detail.LikedByMe, err = s.db.LikeRepo().Exists(ctx, identity.UserID, project.ID)
		if err != nil {
			return nil, errs.NewDatabaseError("find like", "like", err)
		}
	}
	return detail, nil
}

// ListPublishedProjects returns published projects, newest first. An empty category matches all.
func (s *ContentService) ListPublishedProjects(ctx context.Context, category string) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().ListPublished(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, errs.NewDatabaseError("find projects", "projects", err)
	}
	return projects, nil
}

// ListFeaturedProjects returns published and featured projects, newest first.
// limit falls back to DefaultFeaturedLimit when not positive and is capped at MaxFeaturedLimit.
func (s *ContentService) ListFeaturedProjects(ctx context.Context, limit int) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().ListFeatured(ctx, clampLimit(limit, DefaultFeaturedLimit, MaxFeaturedLimit))
	if err != nil {
		return nil, errs.NewDatabaseError("find projects", "projects", err)
	}
	return projects, nil
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

// ListCategories returns the categories that have at least one published project.
func (s *ContentService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.db.ProjectRepo().Categories(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find categories", "projects", err)
	}
	return categories, nil
}

// ListAllProjects returns every project including drafts.
func (s *ContentService) ListAllProjects(ctx context.Context, identity *Identity) ([]*models.Project, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	projects, err := s.db.ProjectRepo().ListAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find projects", "projects", err)
	}
	return projects, nil
}

func parseDate(value string) (*datatypes.Date, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil, errs.NewInvalidFieldError("date_achieved", "must be a date formatted as YYYY-MM-DD")
	}
	d := datatypes.Date(t)
	return &d, nil
}

func applyAchievementInput(achievement *models.Achievement, in AchievementInput) error {
	date, err := parseDate(in.DateAchieved)
	if err != nil {
		return err
	}
	achievement.Title = in.Title
	achievement.Description = in.Description
	achievement.DateAchieved = date
	achievement.Category = in.Category
	achievement.CertificateURL = in.CertificateURL
	achievement.IsPublished = in.IsPublished
	return nil
}

func (s *ContentService) CreateAchievement(ctx context.Context, identity *Identity, in AchievementInput) (*models.Achievement, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	achievement := &models.Achievement{}
	if err := applyAchievementInput(achievement, in); err != nil {
		return nil, err
	}
	image, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	achievement.ImageURL = image

	if err := s.db.AchievementRepo().Add(ctx, achievement); err != nil {
		return nil, errs.NewDatabaseError("create achievement", "achievement", err)
	}
	s.logger.Info().Str("achievementId", achievement.ID.String()).Msg("Created achievement")
	return achievement, nil
}

func (s *ContentService) UpdateAchievement(ctx context.Context, identity *Identity, id uuid.UUID, in AchievementInput) (*models.Achievement, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	achievement, err := s.db.AchievementRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find achievement", "achievement", err)
	}
	if achievement == nil {
		return nil, errs.NewNotFound("achievement")
	}
	if err := applyAchievementInput(achievement, in); err != nil {
		return nil, err
	}
	if in.Image != nil {
		image, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		achievement.ImageURL = image
	}

	if err := s.db.AchievementRepo().Update(ctx, achievement); err != nil {
		return nil, errs.NewDatabaseError("update achievement", "achievement", err)
	}
	return achievement, nil
}

func (s *ContentService) DeleteAchievement(ctx context.Context, identity *Identity, id uuid.UUID) error {
	if err := Authorize(identity, RoleOwner); err != nil {
		return err
	}
	deleted, err := s.db.AchievementRepo().Delete(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("delete achievement", "achievement", err)
	}
	if !deleted {
		return errs.NewNotFound("achievement")
	}
	return nil
}

func (s *ContentService) GetAchievement(ctx context.Context, identity *Identity, id uuid.UUID) (*models.Achievement, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	achievement, err := s.db.AchievementRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find achievement", "achievement", err)
	}
	if achievement == nil {
		return nil, errs.NewNotFound("achievement")
	}
	return achievement, nil
}

// ListPublishedAchievements returns published achievements, most recent date first, undated last.
func (s *ContentService) ListPublishedAchievements(ctx context.Context, category string) ([]*models.Achievement, error) {
	achievements, err := s.db.AchievementRepo().ListPublished(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, errs.NewDatabaseError("find achievements", "achievements", err)
	}
	return achievements, nil
}

func (s *ContentService) ListAllAchievements(ctx context.Context, identity *Identity) ([]*models.Achievement, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	achievements, err := s.db.AchievementRepo().ListAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find achievements", "achievements", err)
	}
	return achievements, nil
}
