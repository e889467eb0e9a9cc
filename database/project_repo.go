package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

// projectColumns selects every project column plus its live like and comment counts.
const projectColumns = "projects.*, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.project_id = projects.id) AS like_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.project_id = projects.id) AS comment_count"

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func (r *ProjectRepo) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Project{}).Select(projectColumns)
}

// ListPublished returns published projects, newest first, optionally restricted to one category
func (r *ProjectRepo) ListPublished(ctx context.Context, category string) ([]*models.Project, error) {
	query := r.withCounts(ctx).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var projects []*models.Project
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// ListFeatured returns at most limit projects that are both published and featured
func (r *ProjectRepo) ListFeatured(ctx context.Context, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.withCounts(ctx).
		Where("is_published = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// ListAll returns every project including drafts
func (r *ProjectRepo) ListAll(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.withCounts(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// ListRecent returns the newest projects regardless of publication state
func (r *ProjectRepo) ListRecent(ctx context.Context, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.withCounts(ctx).Order("created_at DESC").Limit(limit).Find(&projects).Error
	return projects, err
}

// Categories returns the distinct non-empty categories of published projects
func (r *ProjectRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("is_published = ? AND category <> ''", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// FindByID returns a project by its ID, or nil when it does not exist
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var projects []*models.Project
	if err := r.withCounts(ctx).Where("projects.id = ?", id).Limit(1).Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return projects[0], nil
}

// Exists reports whether a project with the given ID exists
func (r *ProjectRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update writes every mutable column of an existing project
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Model(project).
		Select("title", "description", "content", "image_url", "demo_url", "github_url",
			"technologies", "category", "is_published", "is_featured", "updated_at").
		Updates(project).Error
}

// Delete removes a project together with its comments and likes in one transaction.
// It reports whether the project existed.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}

func (r *ProjectRepo) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}
