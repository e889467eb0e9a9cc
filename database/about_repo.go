package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AboutMeRepo struct {
	db *gorm.DB
}

func NewAboutMeRepo(db *gorm.DB) *AboutMeRepo {
	return &AboutMeRepo{db}
}

// Get returns the about row, or nil when none has been written.
func (r *AboutMeRepo) Get(ctx context.Context) (*models.AboutMe, error) {
	var rows []*models.AboutMe
	if err := r.db.WithContext(ctx).Order("created_at, id").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Upsert applies fn to the existing row, or to a fresh one when the table is empty, and saves it.
// The read and the write share a transaction and the row is locked where the dialect allows it.
func (r *AboutMeRepo) Upsert(ctx context.Context, fn func(about *models.AboutMe)) (*models.AboutMe, error) {
	var saved models.AboutMe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.AboutMe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("created_at, id").Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			saved = models.AboutMe{}
			fn(&saved)
			return tx.Create(&saved).Error
		}
		saved = rows[0]
		fn(&saved)
		return tx.Model(&saved).
			Select("content", "skills", "experience", "education", "updated_at").
			Updates(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *AboutMeRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AboutMe{}).Count(&count).Error
	return count, err
}

type GitHubRepoRepo struct {
	db *gorm.DB
}

func NewGitHubRepoRepo(db *gorm.DB) *GitHubRepoRepo {
	return &GitHubRepoRepo{db}
}

// ReplaceAll swaps the whole mirror for repos in one transaction.
func (r *GitHubRepoRepo) ReplaceAll(ctx context.Context, repos []*models.GitHubRepo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.GitHubRepo{}).Error; err != nil {
			return err
		}
		if len(repos) == 0 {
			return nil
		}
		return tx.CreateInBatches(repos, 100).Error
	})
}

// ListAll returns every mirrored repository, most starred first.
func (r *GitHubRepoRepo) ListAll(ctx context.Context) ([]*models.GitHubRepo, error) {
	var repos []*models.GitHubRepo
	err := r.db.WithContext(ctx).Order("stars DESC, name").Find(&repos).Error
	return repos, err
}

// ListDisplayed returns the repositories shown on the public pages.
func (r *GitHubRepoRepo) ListDisplayed(ctx context.Context) ([]*models.GitHubRepo, error) {
	var repos []*models.GitHubRepo
	err := r.db.WithContext(ctx).Where("is_displayed = ?", true).Order("stars DESC, name").Find(&repos).Error
	return repos, err
}

func (r *GitHubRepoRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GitHubRepo, error) {
	var repo models.GitHubRepo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&repo).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// SetDisplayed updates the visibility flag only.
func (r *GitHubRepoRepo) SetDisplayed(ctx context.Context, id uuid.UUID, displayed bool) error {
	return r.db.WithContext(ctx).Model(&models.GitHubRepo{}).
		Where("id = ?", id).
		UpdateColumn("is_displayed", displayed).Error
}

func (r *GitHubRepoRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GitHubRepo{}).Count(&count).Error
	return count, err
}
