package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

// undated achievements sort after dated ones on every dialect
const achievementOrder = "CASE WHEN date_achieved IS NULL THEN 1 ELSE 0 END, date_achieved DESC, created_at DESC"

type AchievementRepo struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db}
}

func (r *AchievementRepo) ListPublished(ctx context.Context, category string) ([]*models.Achievement, error) {
	query := r.db.WithContext(ctx).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var achievements []*models.Achievement
	err := query.Order(achievementOrder).Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepo) ListAll(ctx context.Context) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := r.db.WithContext(ctx).Order(achievementOrder).Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&achievement).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementRepo) Add(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *AchievementRepo) Update(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Model(achievement).
		Select("title", "description", "date_achieved", "category", "image_url",
			"certificate_url", "is_published", "updated_at").
		Updates(achievement).Error
}

// Delete reports whether a row was removed.
func (r *AchievementRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Achievement{})
	return result.RowsAffected > 0, result.Error
}

func (r *AchievementRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Achievement{}).Count(&count).Error
	return count, err
}

func (r *AchievementRepo) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Achievement{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}
